package xv6fs

import "sync"

// Buf is one cached disk block. Exclusion is per-buffer, so a thread
// holding one buffer never blocks operations on a different block.
type Buf struct {
	mu   sync.Mutex
	dev  Device
	bno  uint32
	data [BSIZE]byte
}

type bufKey struct {
	dev Device
	bno uint32
}

// bcache is the minimal buffered block cache sitting in front of a
// Device. It is intentionally a thin, non-evicting map (real kernels
// use an LRU list); nothing here depends on an eviction policy. Every
// bwrite writes through and every bread re-reads the device, so a
// change made to the device outside the cache is always seen. Keyed
// by (device, block number), so mounting several devices in the same
// process never serves one device's block out of another's slot.
type bcache struct {
	mu   sync.Mutex
	bufs map[bufKey]*Buf
}

var cache = &bcache{bufs: make(map[bufKey]*Buf)}

// bread returns the buffer for block bno on dev, filled with the
// block's current contents read from the device. The returned buffer
// is locked; callers must call brelse when done.
func bread(dev Device, bno uint32) (*Buf, error) {
	cache.mu.Lock()
	k := bufKey{dev, bno}
	b, ok := cache.bufs[k]
	if !ok {
		b = &Buf{dev: dev, bno: bno}
		cache.bufs[k] = b
	}
	cache.mu.Unlock()

	b.mu.Lock()
	if _, err := dev.ReadAt(b.data[:], int64(bno)*BSIZE); err != nil {
		b.mu.Unlock()
		return nil, err
	}
	return b, nil
}

// bwrite writes a locked buffer's contents back to its device.
func bwrite(b *Buf) error {
	_, err := b.dev.WriteAt(b.data[:], int64(b.bno)*BSIZE)
	return err
}

// brelse releases a buffer acquired with bread.
func brelse(b *Buf) {
	b.mu.Unlock()
}
