package xv6fs_test

import (
	"testing"

	xv6fs "github.com/cell-os/xv6fs"
)

func TestCheckCleanImageHasNoInconsistencies(t *testing.T) {
	sb, dev := formatMem(t, 4096)
	ip := mustCreate(t, sb, "file.txt")

	if err := xv6fs.Ilock(ip); err != nil {
		t.Fatalf("Ilock: %v", err)
	}
	if err := xv6fs.WriteAll(ip, []byte("clean contents")); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	xv6fs.Iunlockput(ip)

	problems, err := xv6fs.Check(dev)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(problems) != 0 {
		t.Fatalf("Check on a freshly written image reported %v", problems)
	}
}

func TestCheckFindsChecksumMismatch(t *testing.T) {
	sb, dev := formatMem(t, 4096)
	ip := mustCreate(t, sb, "file.txt")

	if err := xv6fs.Ilock(ip); err != nil {
		t.Fatalf("Ilock: %v", err)
	}
	if err := xv6fs.WriteAll(ip, []byte("will be corrupted")); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	addr := ip.Addrs[0]
	xv6fs.Iunlockput(ip)

	var b [1]byte
	off := int64(addr) * 512
	if _, err := dev.ReadAt(b[:], off); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	b[0] ^= 0xff
	if _, err := dev.WriteAt(b[:], off); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}

	problems, err := xv6fs.Check(dev)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	found := false
	for _, p := range problems {
		if p.Kind == "checksum" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Check after corruption reported %v, want a checksum inconsistency", problems)
	}
}

func TestCheckFindsBitmapLeak(t *testing.T) {
	sb, dev := formatMem(t, 4096)
	_ = mustCreate(t, sb, "file.txt")

	// Directly claim a data block in the bitmap without attaching it
	// to any inode.
	bb := make([]byte, 1)
	// Block 200 lies in the data region well past the blocks Format
	// and mustCreate allocated (metadata blocks 0-52 and the root
	// directory's block 53), so no inode references it.
	leaked := uint32(200)
	bitmapBlockOffset := int64(52) * 512 // matches formatMem(4096)'s BitmapStart for the default 200 inodes
	if _, err := dev.ReadAt(bb, bitmapBlockOffset+int64(leaked/8)); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	bb[0] |= 1 << (leaked % 8)
	if _, err := dev.WriteAt(bb, bitmapBlockOffset+int64(leaked/8)); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}

	problems, err := xv6fs.Check(dev)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	found := false
	for _, p := range problems {
		if p.Kind == "bitmap-leak" && p.Block == leaked {
			found = true
		}
	}
	if !found {
		t.Fatalf("Check did not find the injected bitmap leak at block %d: %v", leaked, problems)
	}
}
