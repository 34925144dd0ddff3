package xv6fs

// itrunc frees every block reachable from ip: direct blocks, the
// single-indirect block and its data blocks, and the double-indirect
// root, its inner blocks, and their data blocks, zeroing every addrs
// slot and the file size. Callers must hold ip locked. The
// double-indirect root is read through ip.sb.dev, the same device
// every other block read in this file goes through.
func itrunc(ip *Inode) error {
	for i := 0; i < NDIRECT; i++ {
		if ip.Addrs[i] != 0 {
			if err := bfree(ip.sb, ip.Addrs[i]); err != nil {
				return err
			}
			ip.Addrs[i] = 0
		}
		ip.Checksum[i] = 0
	}

	if indBno := ip.Addrs[NDIRECT]; indBno != 0 {
		b, err := bread(ip.sb.dev, indBno)
		if err != nil {
			return err
		}
		for j := uint32(0); j < indirectCap; j++ {
			if ptr := readWord(b, j); ptr != 0 {
				if err := bfree(ip.sb, ptr); err != nil {
					brelse(b)
					return err
				}
			}
		}
		brelse(b)
		if err := bfree(ip.sb, indBno); err != nil {
			return err
		}
		ip.Addrs[NDIRECT] = 0
	}

	if rootBno := ip.Addrs[NDIRECT+1]; rootBno != 0 {
		root, err := bread(ip.sb.dev, rootBno)
		if err != nil {
			return err
		}
		for i := uint32(0); i < rootCap; i++ {
			innerBno := readWord(root, i)
			if innerBno == 0 {
				continue
			}
			inner, err := bread(ip.sb.dev, innerBno)
			if err != nil {
				brelse(root)
				return err
			}
			for j := uint32(0); j < indirectCap; j++ {
				if ptr := readWord(inner, j); ptr != 0 {
					if err := bfree(ip.sb, ptr); err != nil {
						brelse(inner)
						brelse(root)
						return err
					}
				}
			}
			brelse(inner)
			if err := bfree(ip.sb, innerBno); err != nil {
				brelse(root)
				return err
			}
		}
		brelse(root)
		if err := bfree(ip.sb, rootBno); err != nil {
			return err
		}
		ip.Addrs[NDIRECT+1] = 0
	}

	ip.Size = 0
	return iupdate(ip)
}
