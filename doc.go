// Package xv6fs implements a small, checksummed, bitmap-allocated disk
// filesystem in the style of the xv6 teaching kernel's fs.c: a block
// allocator, an in-memory inode cache with busy/valid locking, a
// three-tier (direct / single-indirect / double-indirect) block map
// that carries an Adler-32 checksum alongside every data-block
// pointer, a directory layer, and a path resolver.
//
// The buffered block cache and block device a real kernel would supply
// externally are implemented here instead (bcache.go, device.go) so the
// package is runnable end-to-end; device drivers are not, and plug into
// rw.go's devsw table. There is no process table: path resolution takes
// the working directory as a parameter. Callers needing a real
// kernel's cache/scheduler integration should treat these as reference
// implementations to replace.
package xv6fs

import (
	"io"
	"log"
)

var logger = log.Default()

// SetLogger overrides the logger used for logged error conditions
// (checksum mismatches). Passing nil discards log output.
func SetLogger(l *log.Logger) {
	if l == nil {
		logger = log.New(io.Discard, "", 0)
		return
	}
	logger = l
}
