package xv6fs_test

import (
	"path/filepath"
	"testing"

	xv6fs "github.com/cell-os/xv6fs"
)

func TestMemDeviceGrowsOnWriteAtPastEnd(t *testing.T) {
	dev := xv6fs.NewMemDevice(1)
	data := []byte("past the initial extent")
	if _, err := dev.WriteAt(data, 4096); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}

	got := make([]byte, len(data))
	if _, err := dev.ReadAt(got, 4096); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("got %q, want %q", got, data)
	}
}

func TestFileDeviceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image")
	dev, err := xv6fs.OpenDevice(path, true, 16)
	if err != nil {
		t.Fatalf("OpenDevice: %v", err)
	}
	defer dev.Close()

	data := []byte("a block's worth of file-backed data")
	if _, err := dev.WriteAt(data, 512); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	if err := dev.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	got := make([]byte, len(data))
	if _, err := dev.ReadAt(got, 512); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("got %q, want %q", got, data)
	}
}
