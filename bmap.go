package xv6fs

// bmap resolves the logical block number bn of ip to a physical block
// number, allocating the data block (and any indirect blocks on the
// path to it) on first touch when alloc is true. Read-only callers
// pass alloc=false; an unallocated slot is then an error instead of
// being silently created.
//
// Indices beyond MAXFILE blocks are rejected with a panic, since it
// indicates a caller bug (writei clamps n against MAXFILE*BSIZE, and
// readi against the file size, before ever calling bmap).
func bmap(ip *Inode, bn uint32, alloc bool) (uint32, error) {
	if bn >= MAXFILE {
		panic("xv6fs: bmap index beyond MAXFILE")
	}

	switch {
	case bn < NDIRECT:
		return resolveSlot(ip.sb, &ip.Addrs[bn], alloc)

	case bn < NDIRECT+indirectCap:
		indBno, err := resolveSlot(ip.sb, &ip.Addrs[NDIRECT], alloc)
		if err != nil || indBno == 0 {
			return 0, err
		}
		slot := bn - NDIRECT
		return resolveIndirectWord(ip.sb, indBno, slot, alloc)

	default:
		bn2 := bn - (NDIRECT + indirectCap)
		innerIdx := bn2 / indirectCap
		slot := bn2 % indirectCap

		rootBno, err := resolveSlot(ip.sb, &ip.Addrs[NDIRECT+1], alloc)
		if err != nil || rootBno == 0 {
			return 0, err
		}

		innerBno, err := resolveIndirectWord(ip.sb, rootBno, innerIdx, alloc)
		if err != nil || innerBno == 0 {
			return 0, err
		}

		return resolveIndirectWord(ip.sb, innerBno, slot, alloc)
	}
}

// resolveSlot returns *slot, allocating a fresh zeroed block into it
// first if it is empty and alloc is true. balloc returning 0 (out of
// space) propagates as a zero return with a nil error; writei turns
// that into a short write.
func resolveSlot(sb *Superblock, slot *uint32, alloc bool) (uint32, error) {
	if *slot != 0 {
		return *slot, nil
	}
	if !alloc {
		return 0, ErrBadOffset
	}
	bno, err := balloc(sb)
	if err != nil || bno == 0 {
		return 0, err
	}
	if err := bzero(sb, bno); err != nil {
		return 0, err
	}
	*slot = bno
	return bno, nil
}

// resolveIndirectWord reads the pointer stored at word index idx
// inside the indirect block bno, allocating a data block into that
// slot (and writing the indirect block back) if it is empty and alloc
// is true.
func resolveIndirectWord(sb *Superblock, bno uint32, idx uint32, alloc bool) (uint32, error) {
	b, err := bread(sb.dev, bno)
	if err != nil {
		return 0, err
	}
	defer brelse(b)

	ptr := readWord(b, idx)
	if ptr != 0 {
		return ptr, nil
	}
	if !alloc {
		return 0, ErrBadOffset
	}

	newBno, err := balloc(sb)
	if err != nil || newBno == 0 {
		return 0, err
	}
	writeWord(b, idx, newBno)
	if err := bwrite(b); err != nil {
		return 0, err
	}
	return newBno, nil
}

// readWord/writeWord access the idx'th little-endian uint32 word of a
// buffer, used both for indirect-block pointers and for their paired
// checksums (checksum.go).
func readWord(b *Buf, idx uint32) uint32 {
	off := idx * 4
	return uint32(b.data[off]) | uint32(b.data[off+1])<<8 | uint32(b.data[off+2])<<16 | uint32(b.data[off+3])<<24
}

func writeWord(b *Buf, idx uint32, val uint32) {
	off := idx * 4
	b.data[off] = byte(val)
	b.data[off+1] = byte(val >> 8)
	b.data[off+2] = byte(val >> 16)
	b.data[off+3] = byte(val >> 24)
}
