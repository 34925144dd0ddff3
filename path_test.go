package xv6fs_test

import (
	"errors"
	"testing"

	xv6fs "github.com/cell-os/xv6fs"
)

func TestNameiResolvesNestedPath(t *testing.T) {
	sb, _ := formatMem(t, 4096)

	root := xv6fs.Iget(sb, xv6fs.ROOTINO)
	if err := xv6fs.Ilock(root); err != nil {
		t.Fatalf("Ilock root: %v", err)
	}
	sub, err := xv6fs.CreateDir(root, "sub")
	if err != nil {
		t.Fatalf("CreateDir: %v", err)
	}
	xv6fs.Iunlockput(root)

	if err := xv6fs.Ilock(sub); err != nil {
		t.Fatalf("Ilock sub: %v", err)
	}
	file, err := xv6fs.CreateFile(sub, "leaf.txt")
	xv6fs.Iunlockput(sub)
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	got, err := xv6fs.Namei(sb, nil, "/sub/leaf.txt")
	if err != nil {
		t.Fatalf("Namei: %v", err)
	}
	if got.Inum() != file.Inum() {
		t.Fatalf("Namei resolved to inode %d, want %d", got.Inum(), file.Inum())
	}
	xv6fs.Iput(got)
}

func TestNameiParentSplitsFinalElement(t *testing.T) {
	sb, _ := formatMem(t, 4096)

	root := xv6fs.Iget(sb, xv6fs.ROOTINO)
	if err := xv6fs.Ilock(root); err != nil {
		t.Fatalf("Ilock root: %v", err)
	}
	foo, err := xv6fs.CreateDir(root, "foo")
	xv6fs.Iunlockput(root)
	if err != nil {
		t.Fatalf("CreateDir: %v", err)
	}
	defer xv6fs.Iput(foo)

	dp, elem, err := xv6fs.NameiParent(sb, nil, "/foo/bar")
	if err != nil {
		t.Fatalf("NameiParent: %v", err)
	}
	defer xv6fs.Iput(dp)
	if elem != "bar" {
		t.Fatalf("final element = %q, want %q", elem, "bar")
	}
	if dp.Inum() != foo.Inum() {
		t.Fatalf("parent inode = %d, want /foo (%d)", dp.Inum(), foo.Inum())
	}
}

func TestNameiRelativeWithoutCwdFails(t *testing.T) {
	sb, _ := formatMem(t, 4096)
	if _, err := xv6fs.Namei(sb, nil, "relative.txt"); !errors.Is(err, xv6fs.ErrBadPath) {
		t.Fatalf("Namei(relative, nil cwd): got %v, want ErrBadPath", err)
	}
}

func TestNameiThroughNonDirectoryFails(t *testing.T) {
	sb, _ := formatMem(t, 4096)
	mustCreate(t, sb, "notadir.txt")

	if _, err := xv6fs.Namei(sb, nil, "/notadir.txt/child"); !errors.Is(err, xv6fs.ErrNotDir) {
		t.Fatalf("Namei through a file: got %v, want ErrNotDir", err)
	}
}
