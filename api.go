package xv6fs

import (
	"errors"
	"fmt"
)

// This file is the package's public operation surface: the CLI and
// FUSE layers sit outside the package, so the lowercase kernel-internal
// primitives (ilock, iget, ...) need exported counterparts. Kept
// separate from icache.go/dirent.go so those stay close to the
// kernel-style operations they implement.

// Iinit resets the shared in-memory inode cache. Tests mounting
// several images in one process call this between mounts so a
// previous image's cached references don't exhaust NINODE slots or
// shadow a reused inode number.
func Iinit() { iinit() }

// Ilock locks ip, loading its on-disk contents on first lock.
func Ilock(ip *Inode) error { return ilock(ip) }

// Iunlock releases ip's lock.
func Iunlock(ip *Inode) { iunlock(ip) }

// Iput drops a reference to ip.
func Iput(ip *Inode) error { return iput(ip) }

// Iunlockput unlocks and drops a reference to ip.
func Iunlockput(ip *Inode) error { return iunlockput(ip) }

// Iget returns a cached, unlocked reference to (sb, inum).
func Iget(sb *Superblock, inum uint32) *Inode { return iget(sb, inum) }

// ReadDirNames returns the names of every non-vacant entry of
// directory dp, in on-disk order. dp must already be locked.
func ReadDirNames(dp *Inode) ([]string, error) {
	if dp.Type != T_DIR {
		return nil, ErrNotDir
	}
	var names []string
	var buf [direntSize]byte
	for off := uint32(0); off < dp.Size; off += direntSize {
		n, err := readi(dp, buf[:], off, direntSize)
		if err != nil {
			return nil, err
		}
		if n != direntSize {
			panic("xv6fs: short dirent read")
		}
		inum, name := unmarshalDirent(buf[:])
		if inum == 0 {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// ReadAll reads ip's entire contents. ip must already be locked.
func ReadAll(ip *Inode) ([]byte, error) {
	buf := make([]byte, ip.Size)
	n, err := readi(ip, buf, 0, ip.Size)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// WriteAll overwrites ip's contents with data, truncating first so a
// shorter write doesn't leave a stale tail. ip must already be
// locked.
func WriteAll(ip *Inode, data []byte) error {
	if err := itrunc(ip); err != nil {
		return err
	}
	n, err := writei(ip, data, 0, uint32(len(data)))
	if err != nil {
		return err
	}
	if int(n) != len(data) {
		return fmt.Errorf("xv6fs: short write, device out of free blocks (%d/%d bytes)", n, len(data))
	}
	return nil
}

// DirLookup looks up name inside the already-locked directory dp,
// returning an unlocked reference to the matching inode.
func DirLookup(dp *Inode, name string) (*Inode, error) { return dirlookup(dp, name, nil) }

// CreateFile allocates a new regular file named name inside directory
// dp and links it in. dp must already be locked.
func CreateFile(dp *Inode, name string) (*Inode, error) {
	if dp.Type != T_DIR {
		return nil, ErrNotDir
	}
	if existing, err := dirlookup(dp, name, nil); err == nil {
		iput(existing)
		return nil, ErrExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	ip, err := ialloc(dp.sb, T_FILE)
	if err != nil {
		return nil, err
	}
	if err := ilock(ip); err != nil {
		iput(ip)
		return nil, err
	}
	ip.Nlink = 1
	if err := iupdate(ip); err != nil {
		iunlockput(ip)
		return nil, err
	}
	if err := dirlink(dp, name, ip.inum); err != nil {
		iunlockput(ip)
		return nil, err
	}
	iunlock(ip)
	return ip, nil
}

// CreateDir allocates a new subdirectory named name inside directory
// dp, wired up with "." and ".." entries. dp must already be locked.
func CreateDir(dp *Inode, name string) (*Inode, error) {
	if dp.Type != T_DIR {
		return nil, ErrNotDir
	}
	if existing, err := dirlookup(dp, name, nil); err == nil {
		iput(existing)
		return nil, ErrExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	ip, err := ialloc(dp.sb, T_DIR)
	if err != nil {
		return nil, err
	}
	if err := ilock(ip); err != nil {
		iput(ip)
		return nil, err
	}
	ip.Nlink = 1
	if err := iupdate(ip); err != nil {
		iunlockput(ip)
		return nil, err
	}
	if err := dirlink(ip, ".", ip.inum); err != nil {
		iunlockput(ip)
		return nil, err
	}
	if err := dirlink(ip, "..", dp.inum); err != nil {
		iunlockput(ip)
		return nil, err
	}
	if err := dirlink(dp, name, ip.inum); err != nil {
		iunlockput(ip)
		return nil, err
	}
	dp.Nlink++
	if err := iupdate(dp); err != nil {
		iunlockput(ip)
		return nil, err
	}

	iunlock(ip)
	return ip, nil
}
