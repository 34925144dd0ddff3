package xv6fs_test

import (
	"bytes"
	"errors"
	"testing"

	xv6fs "github.com/cell-os/xv6fs"
)

func mustCreate(t *testing.T, sb *xv6fs.Superblock, name string) *xv6fs.Inode {
	t.Helper()
	root := xv6fs.Iget(sb, xv6fs.ROOTINO)
	if err := xv6fs.Ilock(root); err != nil {
		t.Fatalf("Ilock root: %v", err)
	}
	defer xv6fs.Iunlockput(root)

	ip, err := xv6fs.CreateFile(root, name)
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	return ip
}

func TestWriteReadRoundTripSmall(t *testing.T) {
	sb, _ := formatMem(t, 4096)
	ip := mustCreate(t, sb, "small.txt")

	want := []byte("hello, xv6fs")
	if err := xv6fs.Ilock(ip); err != nil {
		t.Fatalf("Ilock: %v", err)
	}
	if err := xv6fs.WriteAll(ip, want); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	xv6fs.Iunlock(ip)

	if err := xv6fs.Ilock(ip); err != nil {
		t.Fatalf("Ilock: %v", err)
	}
	got, err := xv6fs.ReadAll(ip)
	xv6fs.Iunlockput(ip)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// TestWriteReadAcrossIndirectBoundary spans a file large enough to
// exercise the direct, single-indirect and double-indirect tiers of
// the block map in one write.
func TestWriteReadAcrossIndirectBoundary(t *testing.T) {
	sb, _ := formatMem(t, 1<<16)
	ip := mustCreate(t, sb, "big.bin")

	const blocks = 12 + 64 + 70 // past NDIRECT+indirectCap into the double-indirect tier
	want := make([]byte, blocks*512)
	for i := range want {
		want[i] = byte(i % 251)
	}

	if err := xv6fs.Ilock(ip); err != nil {
		t.Fatalf("Ilock: %v", err)
	}
	if err := xv6fs.WriteAll(ip, want); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	xv6fs.Iunlock(ip)

	if err := xv6fs.Ilock(ip); err != nil {
		t.Fatalf("Ilock: %v", err)
	}
	got, err := xv6fs.ReadAll(ip)
	xv6fs.Iunlockput(ip)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("round trip mismatch across indirect tiers (%d bytes)", len(want))
	}
}

func TestReadDetectsChecksumMismatch(t *testing.T) {
	sb, dev := formatMem(t, 4096)
	ip := mustCreate(t, sb, "corrupt.txt")

	if err := xv6fs.Ilock(ip); err != nil {
		t.Fatalf("Ilock: %v", err)
	}
	if err := xv6fs.WriteAll(ip, []byte("original contents")); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	xv6fs.Iunlock(ip)

	// Flip a byte directly on the device, bypassing the package so the
	// stored checksum no longer matches. ip.Addrs[0] is the file's
	// first (and only, for this small write) data block.
	off := int64(ip.Addrs[0]) * 512
	var b [1]byte
	if _, err := dev.ReadAt(b[:], off); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	b[0] ^= 0xff
	if _, err := dev.WriteAt(b[:], off); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}

	if err := xv6fs.Ilock(ip); err != nil {
		t.Fatalf("Ilock: %v", err)
	}
	_, err := xv6fs.ReadAll(ip)
	xv6fs.Iunlockput(ip)
	if !errors.Is(err, xv6fs.ErrChecksumMismatch) {
		t.Fatalf("ReadAll after corruption: got %v, want ErrChecksumMismatch", err)
	}
}
