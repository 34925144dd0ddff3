package xv6fs

import "sync"

// iCache is the fixed-size, spinlock-protected table of cached inodes.
// The single mutex here plays the role of the spinlock; per-inode
// exclusion across disk I/O is the separate BUSY flag (flagBusy)
// guarded by the same mutex but released across blocking I/O. This is
// the standard xv6 two-level synchronization discipline: a short
// spinlock for cache bookkeeping, a sleep-lock for long-lived
// exclusion. cond is used for the sleep/wakeup pair ilock/iunlock
// need; Go's sync.Cond is the idiomatic stdlib equivalent of xv6's
// sleep()/wakeup() keyed on an address.
type iCache struct {
	mu    sync.Mutex
	cond  *sync.Cond
	table [NINODE]Inode
}

var icache = newICache()

func newICache() *iCache {
	c := &iCache{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// iinit resets the in-memory inode cache. In a kernel it runs once at
// boot; here it also gives tests a way to start from a clean cache
// between mounts of different devices.
func iinit() {
	icache.mu.Lock()
	defer icache.mu.Unlock()
	for i := range icache.table {
		icache.table[i] = Inode{}
	}
}

// iget returns an unlocked cached reference to (sb, inum), creating an
// entry in the first free slot if none exists yet. It panics if the
// cache has no free slot; exhausting the inode cache is unrecoverable.
func iget(sb *Superblock, inum uint32) *Inode {
	icache.mu.Lock()
	defer icache.mu.Unlock()

	var empty *Inode
	for i := range icache.table {
		ip := &icache.table[i]
		if ip.ref > 0 && ip.sb == sb && ip.inum == inum {
			ip.ref++
			return ip
		}
		if empty == nil && ip.ref == 0 {
			empty = ip
		}
	}

	if empty == nil {
		panic("xv6fs: inode cache exhausted")
	}

	empty.sb = sb
	empty.inum = inum
	empty.ref = 1
	empty.flags = 0
	return empty
}

// idup increments ip's reference count and returns it.
func idup(ip *Inode) *Inode {
	icache.mu.Lock()
	ip.ref++
	icache.mu.Unlock()
	return ip
}

// ilock blocks while another thread holds ip BUSY, then claims it and
// loads its on-disk contents on first lock. It panics if the on-disk
// inode is free: locking a freed inode is a caller bug.
func ilock(ip *Inode) error {
	icache.mu.Lock()
	for ip.flags&flagBusy != 0 {
		icache.cond.Wait()
	}
	ip.flags |= flagBusy
	needLoad := ip.flags&flagValid == 0
	icache.mu.Unlock()

	if needLoad {
		if err := readDinode(ip); err != nil {
			iunlock(ip)
			return err
		}
		if ip.Type == T_FREE {
			panic("xv6fs: locking free inode")
		}
		icache.mu.Lock()
		ip.flags |= flagValid
		icache.mu.Unlock()
	}
	return nil
}

// iunlock releases ip's BUSY flag and wakes any waiters.
func iunlock(ip *Inode) {
	icache.mu.Lock()
	if ip.flags&flagBusy == 0 {
		icache.mu.Unlock()
		panic("xv6fs: unlocking an unlocked inode")
	}
	ip.flags &^= flagBusy
	icache.cond.Broadcast()
	icache.mu.Unlock()
}

// iput drops a reference to ip. If this was the last reference to a
// valid inode with no remaining directory links, the inode is
// evicted: truncated, freed on disk, and its cache slot reset.
func iput(ip *Inode) error {
	icache.mu.Lock()
	if ip.ref == 1 && ip.flags&flagValid != 0 && ip.Nlink == 0 {
		if ip.flags&flagBusy != 0 {
			icache.mu.Unlock()
			panic("xv6fs: iput racing with a locked inode")
		}
		ip.flags |= flagBusy
		icache.mu.Unlock()

		if err := itrunc(ip); err != nil {
			return err
		}
		ip.Type = T_FREE
		if err := iupdate(ip); err != nil {
			return err
		}

		icache.mu.Lock()
		ip.flags = 0
		icache.cond.Broadcast()
	}
	ip.ref--
	icache.mu.Unlock()
	return nil
}

// iunlockput unlocks ip and then drops a reference to it, the
// combination almost every call site needs, including path-resolution
// early returns.
func iunlockput(ip *Inode) error {
	iunlock(ip)
	return iput(ip)
}
