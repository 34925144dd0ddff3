package xv6fs

import "errors"

// Package-specific error variables usable with errors.Is(). Validation
// and integrity-violation failures are returned as errors; corruption
// and invariant breaches panic instead.
var (
	// ErrBadOffset is returned when an I/O offset is out of range for
	// the target inode (off > size, or off+n overflows).
	ErrBadOffset = errors.New("xv6fs: offset out of range")

	// ErrNoDevice is returned when a device-file read/write names a
	// major number with no registered driver entry.
	ErrNoDevice = errors.New("xv6fs: no such device driver")

	// ErrChecksumMismatch is returned by readi when a block's stored
	// Adler-32 does not match its contents. The failing block number
	// is also logged.
	ErrChecksumMismatch = errors.New("xv6fs: checksum mismatch")

	// ErrExists is returned by dirlink when the name is already
	// present in the directory.
	ErrExists = errors.New("xv6fs: name already exists")

	// ErrNotDir is returned when a path component expected to be a
	// directory is not one.
	ErrNotDir = errors.New("xv6fs: not a directory")

	// ErrNotFound is returned by lookups that find no matching entry
	// or inode.
	ErrNotFound = errors.New("xv6fs: no such file or directory")

	// ErrInvalidSuper is returned when block 1 does not parse as a
	// valid superblock.
	ErrInvalidSuper = errors.New("xv6fs: invalid superblock")

	// ErrBadPath is returned by the path resolver for a malformed or
	// empty path.
	ErrBadPath = errors.New("xv6fs: bad path")
)
