//go:build fuse

package xv6fs

import (
	"context"
	"errors"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// fuseNode adapts one inode into the go-fuse node API. It wraps
// fs.Inode rather than embedding FUSE machinery into Inode itself,
// since this package's Inode is also the cache-table entry ilock/iput
// serialize access to; keeping the FUSE adapter as a separate, thin
// node avoids tangling those two lifecycles.
type fuseNode struct {
	fs.Inode
	sb   *Superblock
	inum uint32
}

var (
	_ fs.NodeLookuper  = (*fuseNode)(nil)
	_ fs.NodeReaddirer = (*fuseNode)(nil)
	_ fs.NodeGetattrer = (*fuseNode)(nil)
	_ fs.NodeOpener    = (*fuseNode)(nil)
	_ fs.NodeReader    = (*fuseNode)(nil)
	_ fs.NodeReleaser  = (*fuseNode)(nil)
)

func fuseMode(t int16) uint32 {
	switch t {
	case T_DIR:
		return fuse.S_IFDIR | 0o755
	case T_DEV:
		return fuse.S_IFCHR | 0o644
	default:
		return fuse.S_IFREG | 0o644
	}
}

func fillAttr(ip *Inode, attr *fuse.Attr) {
	attr.Ino = uint64(ip.inum)
	attr.Size = uint64(ip.Size)
	attr.Mode = fuseMode(ip.Type)
	attr.Nlink = uint32(ip.Nlink)
}

func (n *fuseNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	dp := iget(n.sb, n.inum)
	if err := ilock(dp); err != nil {
		iput(dp)
		return nil, syscall.EIO
	}
	child, err := dirlookup(dp, name, nil)
	iunlockput(dp)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, syscall.ENOENT
		}
		return nil, syscall.EIO
	}

	if err := ilock(child); err != nil {
		iput(child)
		return nil, syscall.EIO
	}
	fillAttr(child, &out.Attr)
	typ := child.Type
	inum := child.Inum()
	iunlockput(child)

	node := &fuseNode{sb: n.sb, inum: inum}
	stable := fs.StableAttr{Mode: fuseMode(typ), Ino: uint64(inum)}
	return n.NewInode(ctx, node, stable), 0
}

type dirStream struct {
	entries []fuse.DirEntry
	pos     int
}

func (d *dirStream) HasNext() bool { return d.pos < len(d.entries) }

func (d *dirStream) Next() (fuse.DirEntry, syscall.Errno) {
	e := d.entries[d.pos]
	d.pos++
	return e, 0
}

func (d *dirStream) Close() {}

func (n *fuseNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	dp := iget(n.sb, n.inum)
	if err := ilock(dp); err != nil {
		iput(dp)
		return nil, syscall.EIO
	}
	defer iunlockput(dp)
	if dp.Type != T_DIR {
		return nil, syscall.ENOTDIR
	}

	var entries []fuse.DirEntry
	var buf [direntSize]byte
	for off := uint32(0); off < dp.Size; off += direntSize {
		got, err := readi(dp, buf[:], off, direntSize)
		if err != nil || got != direntSize {
			return nil, syscall.EIO
		}
		inum, name := unmarshalDirent(buf[:])
		if inum == 0 {
			continue
		}
		entries = append(entries, fuse.DirEntry{Name: name, Ino: uint64(inum), Mode: fuse.S_IFREG})
	}
	return &dirStream{entries: entries}, 0
}

func (n *fuseNode) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	ip := iget(n.sb, n.inum)
	if err := ilock(ip); err != nil {
		iput(ip)
		return syscall.EIO
	}
	fillAttr(ip, &out.Attr)
	iunlockput(ip)
	return 0
}

// fuseFileHandle keeps the cache reference an open file holds between
// Open and Release, mirroring readi/writei's "caller holds a
// reference" contract.
type fuseFileHandle struct {
	ip *Inode
}

func (n *fuseNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	ip := iget(n.sb, n.inum)
	return &fuseFileHandle{ip: ip}, fuse.FOPEN_KEEP_CACHE, 0
}

func (n *fuseNode) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	fh, ok := f.(*fuseFileHandle)
	if !ok {
		return nil, syscall.EIO
	}
	if err := ilock(fh.ip); err != nil {
		return nil, syscall.EIO
	}
	defer iunlock(fh.ip)

	got, err := readi(fh.ip, dest, uint32(off), uint32(len(dest)))
	if err != nil {
		return nil, syscall.EIO
	}
	return fuse.ReadResultData(dest[:got]), 0
}

func (n *fuseNode) Release(ctx context.Context, f fs.FileHandle) syscall.Errno {
	if fh, ok := f.(*fuseFileHandle); ok {
		iput(fh.ip)
	}
	return 0
}

// MountFUSE mounts sb at mountpoint and blocks until it is unmounted.
// Named distinctly from the package's Mount (mkfs.go, which only
// parses a superblock) since this one drives an OS-visible mount.
func MountFUSE(mountpoint string, sb *Superblock) error {
	root := &fuseNode{sb: sb, inum: ROOTINO}
	server, err := fs.Mount(mountpoint, root, &fs.Options{})
	if err != nil {
		return err
	}
	server.Wait()
	return nil
}
