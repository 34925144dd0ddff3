package xv6fs_test

import (
	"testing"

	xv6fs "github.com/cell-os/xv6fs"
)

func formatMem(t *testing.T, blocks uint32, opts ...xv6fs.FormatOption) (*xv6fs.Superblock, *xv6fs.MemDevice) {
	t.Helper()
	xv6fs.Iinit()
	dev := xv6fs.NewMemDevice(blocks)
	sb, err := xv6fs.Format(dev, blocks, opts...)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	return sb, dev
}

func TestFormatProducesMountableImage(t *testing.T) {
	sb, dev := formatMem(t, 2048)

	got, err := xv6fs.ReadSuperblock(dev)
	if err != nil {
		t.Fatalf("ReadSuperblock: %v", err)
	}
	if got.Size != sb.Size || got.NInodes != sb.NInodes {
		t.Fatalf("re-read superblock mismatch: got %+v, want %+v", got, sb)
	}
}

func TestFormatRootDirHasDotEntries(t *testing.T) {
	sb, _ := formatMem(t, 2048)

	root := xv6fs.Iget(sb, xv6fs.ROOTINO)
	if err := xv6fs.Ilock(root); err != nil {
		t.Fatalf("Ilock: %v", err)
	}
	defer xv6fs.Iunlockput(root)

	names, err := xv6fs.ReadDirNames(root)
	if err != nil {
		t.Fatalf("ReadDirNames: %v", err)
	}
	if len(names) != 2 || names[0] != "." || names[1] != ".." {
		t.Fatalf("unexpected root entries: %v", names)
	}
}

func TestFormatRejectsUndersizedImage(t *testing.T) {
	dev := xv6fs.NewMemDevice(4)
	if _, err := xv6fs.Format(dev, 4); err == nil {
		t.Fatalf("expected Format to reject a device too small for its own metadata")
	}
}

func TestWithInodeCount(t *testing.T) {
	sb, _ := formatMem(t, 4096, xv6fs.WithInodeCount(32))
	if sb.NInodes != 32 {
		t.Fatalf("NInodes = %d, want 32", sb.NInodes)
	}
}
