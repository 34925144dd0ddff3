package xv6fs

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// padName returns s truncated/zero-padded to exactly DIRSIZ bytes, the
// on-disk representation of a dirent name. Names are NUL-padded to
// DIRSIZ; comparisons are bounded by DIRSIZ.
func padName(s string) [DIRSIZ]byte {
	var buf [DIRSIZ]byte
	copy(buf[:], s)
	return buf
}

// namecmp compares two names bytewise, bounded by DIRSIZ.
func namecmp(a, b string) int {
	pa, pb := padName(a), padName(b)
	return bytes.Compare(pa[:], pb[:])
}

// skipelem consumes the next path element of path, returning it along
// with whatever remains. It reports ok=false for an empty or
// all-slashes path. Elements longer than DIRSIZ are truncated, since
// that's the longest name a dirent can hold.
func skipelem(path string) (elem, rest string, ok bool) {
	i := 0
	for i < len(path) && path[i] == '/' {
		i++
	}
	if i >= len(path) {
		return "", "", false
	}
	start := i
	for i < len(path) && path[i] != '/' {
		i++
	}
	elem = path[start:i]
	if len(elem) > DIRSIZ {
		elem = elem[:DIRSIZ]
	}
	for i < len(path) && path[i] == '/' {
		i++
	}
	return elem, path[i:], true
}

// marshalDirent encodes one directory entry.
func marshalDirent(inum uint16, name string) [direntSize]byte {
	var buf [direntSize]byte
	binary.LittleEndian.PutUint16(buf[0:2], inum)
	copy(buf[2:], name)
	return buf
}

// unmarshalDirent decodes one directory entry. The name is cut at the
// first NUL byte (or DIRSIZ, for a full-length name with no padding
// left).
func unmarshalDirent(buf []byte) (inum uint16, name string) {
	inum = binary.LittleEndian.Uint16(buf[0:2])
	raw := buf[2 : 2+DIRSIZ]
	n := bytes.IndexByte(raw, 0)
	if n < 0 {
		n = DIRSIZ
	}
	return inum, string(raw[:n])
}

// dirlookup scans dp's entries for name, returning a new unlocked
// reference to the matching inode. dp must already be locked and be a
// directory. If poff is non-nil, the byte offset of the matching
// dirent is stored through it.
func dirlookup(dp *Inode, name string, poff *uint32) (*Inode, error) {
	if dp.Type != T_DIR {
		return nil, ErrNotDir
	}

	var buf [direntSize]byte
	for off := uint32(0); off < dp.Size; off += direntSize {
		n, err := readi(dp, buf[:], off, direntSize)
		if err != nil {
			return nil, err
		}
		if n != direntSize {
			panic("xv6fs: short dirent read")
		}

		inum, ename := unmarshalDirent(buf[:])
		if inum == 0 {
			continue
		}
		if namecmp(name, ename) == 0 {
			if poff != nil {
				*poff = off
			}
			return iget(dp.sb, uint32(inum)), nil
		}
	}
	return nil, ErrNotFound
}

// dirlink adds a (name, inum) entry to directory dp, reusing the first
// vacant slot (inum == 0) or appending past the current end. It fails
// with ErrExists if name is already present. Short dirent I/O is a
// corruption signal and panics.
func dirlink(dp *Inode, name string, inum uint32) error {
	if existing, err := dirlookup(dp, name, nil); err == nil {
		iput(existing)
		return ErrExists
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	var buf [direntSize]byte
	off := dp.Size
	for o := uint32(0); o < dp.Size; o += direntSize {
		n, err := readi(dp, buf[:], o, direntSize)
		if err != nil {
			return err
		}
		if n != direntSize {
			panic("xv6fs: short dirent read")
		}
		if existingInum, _ := unmarshalDirent(buf[:]); existingInum == 0 {
			off = o
			break
		}
	}

	entry := marshalDirent(uint16(inum), name)
	n, err := writei(dp, entry[:], off, direntSize)
	if err != nil {
		return err
	}
	if n != direntSize {
		panic("xv6fs: short dirent write")
	}
	return nil
}
