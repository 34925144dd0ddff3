package xv6fs_test

import (
	"testing"

	xv6fs "github.com/cell-os/xv6fs"
)

func TestIgetDedupesSameInode(t *testing.T) {
	sb, _ := formatMem(t, 4096)

	a := xv6fs.Iget(sb, xv6fs.ROOTINO)
	b := xv6fs.Iget(sb, xv6fs.ROOTINO)
	if a != b {
		t.Fatalf("Iget returned distinct *Inode values for the same (sb, inum)")
	}
	xv6fs.Iput(a)
	xv6fs.Iput(b)
}

func TestUnlockingAnUnlockedInodePanics(t *testing.T) {
	sb, _ := formatMem(t, 4096)
	ip := xv6fs.Iget(sb, xv6fs.ROOTINO)
	if err := xv6fs.Ilock(ip); err != nil {
		t.Fatalf("Ilock: %v", err)
	}
	xv6fs.Iunlock(ip)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic unlocking an already-unlocked inode")
		}
		xv6fs.Iput(ip)
	}()
	xv6fs.Iunlock(ip)
}

func TestLockingAFreedInodePanics(t *testing.T) {
	sb, _ := formatMem(t, 4096)

	// Inode number one past the root that Format never allocates: on
	// disk its type is still T_FREE.
	free := xv6fs.Iget(sb, xv6fs.ROOTINO+1)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic locking a free on-disk inode")
		}
	}()
	xv6fs.Ilock(free)
}
