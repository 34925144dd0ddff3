package xv6fs

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Device is the backing store a Superblock is mounted against: a flat
// address space of bytes, addressed in BSIZE-byte blocks by the rest
// of this package. The buffered block cache that sits in front of a
// device reads and writes through this narrower interface.
type Device interface {
	io.ReaderAt
	io.WriterAt
	// Sync forces any buffered writes to stable storage. The
	// superblock write calls it; block writes through the buffer
	// cache do not, and rely on the device writing through (FileDevice
	// opens with O_SYNC).
	Sync() error
}

// FileDevice is a Device backed by a regular file or block special
// file, opened with O_SYNC so every WriteAt already hits the kernel's
// stable-storage path before Sync is even called; Sync remains
// available for devices where O_SYNC isn't honored uniformly (loopback
// files on some platforms).
type FileDevice struct {
	f *os.File
}

// OpenDevice opens path as a Device. If create is true and the file
// does not exist, it is created at the given size in blocks.
func OpenDevice(path string, create bool, sizeBlocks uint32) (*FileDevice, error) {
	flags := unix.O_RDWR | unix.O_SYNC
	if create {
		flags |= unix.O_CREAT
	}
	fd, err := unix.Open(path, flags, 0644)
	if err != nil {
		return nil, err
	}
	f := os.NewFile(uintptr(fd), path)
	if create {
		if err := f.Truncate(int64(sizeBlocks) * BSIZE); err != nil {
			f.Close()
			return nil, err
		}
	}
	return &FileDevice{f: f}, nil
}

func (d *FileDevice) ReadAt(p []byte, off int64) (int, error)  { return d.f.ReadAt(p, off) }
func (d *FileDevice) WriteAt(p []byte, off int64) (int, error) { return d.f.WriteAt(p, off) }
func (d *FileDevice) Sync() error                              { return d.f.Sync() }
func (d *FileDevice) Close() error                             { return d.f.Close() }

// MemDevice is an in-memory Device, used by Format/mkfs-style tooling
// building an image before it is ever written to disk, and by tests
// that don't want real file I/O.
type MemDevice struct {
	data []byte
}

// NewMemDevice returns a zeroed in-memory device of the given size in
// blocks.
func NewMemDevice(sizeBlocks uint32) *MemDevice {
	return &MemDevice{data: make([]byte, int64(sizeBlocks)*BSIZE)}
}

func (d *MemDevice) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(d.data)) {
		return 0, io.EOF
	}
	n := copy(p, d.data[off:])
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

func (d *MemDevice) WriteAt(p []byte, off int64) (int, error) {
	end := off + int64(len(p))
	if end > int64(len(d.data)) {
		grown := make([]byte, end)
		copy(grown, d.data)
		d.data = grown
	}
	return copy(d.data[off:], p), nil
}

func (d *MemDevice) Sync() error { return nil }
