package xv6fs

// FormatOption configures Format using the functional-options pattern.
type FormatOption func(*formatConfig)

type formatConfig struct {
	ninodes uint32
}

// WithInodeCount overrides the number of on-disk inodes a freshly
// formatted device provides (default 200).
func WithInodeCount(n uint32) FormatOption {
	return func(c *formatConfig) { c.ninodes = n }
}

// Format lays out a fresh xv6fs on dev: boot block, superblock,
// zeroed inode table, zeroed free-block bitmap (with every metadata
// block pre-marked allocated), and a root directory inode with "."
// and ".." entries.
func Format(dev Device, sizeBlocks uint32, opts ...FormatOption) (*Superblock, error) {
	cfg := formatConfig{ninodes: 200}
	for _, o := range opts {
		o(&cfg)
	}

	ninodeBlocks := (cfg.ninodes + IPB - 1) / IPB
	nbitmapBlocks := (sizeBlocks + BPB - 1) / BPB

	inodeStart := uint32(2) // block 0: boot, block 1: superblock
	bitmapStart := inodeStart + ninodeBlocks
	dataStart := bitmapStart + nbitmapBlocks
	if dataStart >= sizeBlocks {
		return nil, ErrBadOffset
	}

	sb := &Superblock{
		dev:         dev,
		Magic:       magic,
		Size:        sizeBlocks,
		NBlocks:     sizeBlocks - dataStart,
		NInodes:     cfg.ninodes,
		InodeStart:  inodeStart,
		BitmapStart: bitmapStart,
		DataStart:   dataStart,
	}

	for b := uint32(0); b < dataStart; b++ {
		if err := bzero(sb, b); err != nil {
			return nil, err
		}
	}
	for bno := uint32(0); bno < dataStart; bno++ {
		if err := markAllocated(sb, bno); err != nil {
			return nil, err
		}
	}

	// The superblock is written once the inode table and bitmap it
	// describes are in place, and again below after the root
	// directory has been created.
	if err := sb.writeSuperblock(); err != nil {
		return nil, err
	}

	root, err := ialloc(sb, T_DIR)
	if err != nil {
		return nil, err
	}
	if err := ilock(root); err != nil {
		return nil, err
	}
	root.Nlink = 1
	if err := iupdate(root); err != nil {
		iunlockput(root)
		return nil, err
	}
	if err := dirlink(root, ".", root.inum); err != nil {
		iunlockput(root)
		return nil, err
	}
	if err := dirlink(root, "..", root.inum); err != nil {
		iunlockput(root)
		return nil, err
	}
	iunlockput(root)

	// The superblock itself is written last, once every other block
	// it describes is already in place.
	if err := sb.writeSuperblock(); err != nil {
		return nil, err
	}

	return sb, nil
}

// markAllocated unconditionally sets bno's bitmap bit, used by Format
// to pre-claim the metadata region before any file data is written.
func markAllocated(sb *Superblock, bno uint32) error {
	bb, err := bread(sb.dev, sb.bitmapBlockFor(bno))
	if err != nil {
		return err
	}
	defer brelse(bb)

	bit := bno % BPB
	bb.data[bit/8] |= 1 << (bit % 8)
	return bwrite(bb)
}

// Mount reads the superblock of an already-formatted device. Neither
// Mount nor Format resets the shared inode cache, so a process that
// mounts several images one after another (as the tests do) calls
// Iinit between them.
func Mount(dev Device) (*Superblock, error) {
	return ReadSuperblock(dev)
}
