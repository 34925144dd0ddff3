package xv6fs

// Devsw is one entry of the device dispatch table: a pair of
// capability callbacks indexed by major number, used to route T_DEV
// inode I/O to whatever driver owns that major. Character/block
// device drivers themselves live outside this package; this table is
// the seam they plug into.
type Devsw struct {
	Read  func(ip *Inode, dst []byte, off uint32) (uint32, error)
	Write func(ip *Inode, src []byte, off uint32) (uint32, error)
}

var devsw [NDEV]Devsw

// RegisterDevice installs the read/write callbacks for a major device
// number.
func RegisterDevice(major int16, d Devsw) {
	devsw[major] = d
}

// readi reads up to n bytes from ip at offset off into dst. dst must
// be at least n bytes. The returned count may be less than n if
// off+n extends past the file's current size.
func readi(ip *Inode, dst []byte, off uint32, n uint32) (uint32, error) {
	if ip.Type == T_DEV {
		return dispatchDevRead(ip, dst, off)
	}

	if off > ip.Size || uint64(off)+uint64(n) < uint64(off) {
		return 0, ErrBadOffset
	}
	if off+n > ip.Size {
		n = ip.Size - off
	}

	var total uint32
	for total < n {
		bn := (off + total) / BSIZE
		bOff := (off + total) % BSIZE

		pbn, err := bmap(ip, bn, false)
		if err != nil {
			return total, err
		}

		b, err := bread(ip.sb.dev, pbn)
		if err != nil {
			return total, err
		}
		if err := verifyChecksum(ip, bn, b.data[:]); err != nil {
			brelse(b)
			return total, err
		}

		m := n - total
		if m > BSIZE-bOff {
			m = BSIZE - bOff
		}
		copy(dst[total:total+m], b.data[bOff:bOff+m])
		brelse(b)
		total += m
	}
	return total, nil
}

// writei writes n bytes from src into ip at offset off, allocating
// blocks (and indirect blocks) on demand. It returns a short count,
// not an error, if the device runs out of free blocks partway
// through.
func writei(ip *Inode, src []byte, off uint32, n uint32) (uint32, error) {
	if ip.Type == T_DEV {
		return dispatchDevWrite(ip, src, off)
	}

	if off > ip.Size || uint64(off)+uint64(n) < uint64(off) {
		return 0, ErrBadOffset
	}
	const maxOff = uint32(MAXFILE) * BSIZE
	if off > maxOff {
		return 0, ErrBadOffset
	}
	if uint64(off)+uint64(n) > uint64(maxOff) {
		n = maxOff - off
	}

	var total uint32
	for total < n {
		bn := (off + total) / BSIZE
		bOff := (off + total) % BSIZE

		pbn, err := bmap(ip, bn, true)
		if err != nil {
			return total, err
		}
		if pbn == 0 {
			// balloc is out of space: stop, reporting a short write.
			break
		}

		b, err := bread(ip.sb.dev, pbn)
		if err != nil {
			return total, err
		}

		m := n - total
		if m > BSIZE-bOff {
			m = BSIZE - bOff
		}
		copy(b.data[bOff:bOff+m], src[total:total+m])

		sum := blockChecksum(b.data[:])
		if err := bwrite(b); err != nil {
			brelse(b)
			return total, err
		}
		brelse(b)

		if err := checksumSet(ip, bn, sum); err != nil {
			return total, err
		}

		total += m
	}

	if total > 0 {
		if off+total > ip.Size {
			ip.Size = off + total
		}
		if err := iupdate(ip); err != nil {
			return total, err
		}
	}
	return total, nil
}

func dispatchDevRead(ip *Inode, dst []byte, off uint32) (uint32, error) {
	if ip.Major < 0 || int(ip.Major) >= NDEV || devsw[ip.Major].Read == nil {
		return 0, ErrNoDevice
	}
	return devsw[ip.Major].Read(ip, dst, off)
}

func dispatchDevWrite(ip *Inode, src []byte, off uint32) (uint32, error) {
	if ip.Major < 0 || int(ip.Major) >= NDEV || devsw[ip.Major].Write == nil {
		return 0, ErrNoDevice
	}
	return devsw[ip.Major].Write(ip, src, off)
}
