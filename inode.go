package xv6fs

import "encoding/binary"

// Inode is the in-memory copy of a dinode. A *Inode always points into
// the global inode cache table (see icache.go); ilock/iunlock
// serialize access to it through its BUSY flag, waiting on the
// cache's shared condition variable.
type Inode struct {
	sb    *Superblock
	inum  uint32
	ref   int
	flags int

	// On-disk fields, valid only once flags&flagValid is set (loaded
	// by ilock on first lock).
	Type     int16
	Major    int16
	Minor    int16
	Nlink    int16
	Size     uint32
	Addrs    [NADDRS]uint32
	Checksum [NDIRECT]uint32
}

// Inum returns the inode number.
func (ip *Inode) Inum() uint32 { return ip.inum }

// dinodeOffset returns the byte offset of inum's dinode within its
// inode block.
func dinodeOffset(inum uint32) int {
	return int(inum%IPB) * dinodeSize
}

// readDinode loads ip's on-disk fields from its inode block.
func readDinode(ip *Inode) error {
	b, err := bread(ip.sb.dev, ip.sb.inodeBlockFor(ip.inum))
	if err != nil {
		return err
	}
	defer brelse(b)

	off := dinodeOffset(ip.inum)
	buf := b.data[off : off+dinodeSize]

	ip.Type = int16(binary.LittleEndian.Uint16(buf[0:2]))
	ip.Major = int16(binary.LittleEndian.Uint16(buf[2:4]))
	ip.Minor = int16(binary.LittleEndian.Uint16(buf[4:6]))
	ip.Nlink = int16(binary.LittleEndian.Uint16(buf[6:8]))
	ip.Size = binary.LittleEndian.Uint32(buf[8:12])

	p := buf[12:]
	for i := 0; i < NADDRS; i++ {
		ip.Addrs[i] = binary.LittleEndian.Uint32(p[i*4 : i*4+4])
	}
	p = p[NADDRS*4:]
	for i := 0; i < NDIRECT; i++ {
		ip.Checksum[i] = binary.LittleEndian.Uint32(p[i*4 : i*4+4])
	}
	return nil
}

// iupdate writes ip's in-memory fields back to its on-disk dinode
// slot. Callers must hold ip locked.
func iupdate(ip *Inode) error {
	b, err := bread(ip.sb.dev, ip.sb.inodeBlockFor(ip.inum))
	if err != nil {
		return err
	}
	defer brelse(b)

	off := dinodeOffset(ip.inum)
	buf := b.data[off : off+dinodeSize]

	binary.LittleEndian.PutUint16(buf[0:2], uint16(ip.Type))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(ip.Major))
	binary.LittleEndian.PutUint16(buf[4:6], uint16(ip.Minor))
	binary.LittleEndian.PutUint16(buf[6:8], uint16(ip.Nlink))
	binary.LittleEndian.PutUint32(buf[8:12], ip.Size)

	p := buf[12:]
	for i := 0; i < NADDRS; i++ {
		binary.LittleEndian.PutUint32(p[i*4:i*4+4], ip.Addrs[i])
	}
	p = p[NADDRS*4:]
	for i := 0; i < NDIRECT; i++ {
		binary.LittleEndian.PutUint32(p[i*4:i*4+4], ip.Checksum[i])
	}

	return bwrite(b)
}

// ialloc scans the on-disk inode table for a free slot (Type ==
// T_FREE), marks it with typ, and returns a cached-but-unlocked
// reference to it. It panics if the device's inode table is exhausted,
// a fatal and unrecoverable condition, the same as iget exhausting the
// in-memory cache.
func ialloc(sb *Superblock, typ int16) (*Inode, error) {
	for inum := uint32(1); inum < sb.NInodes; inum++ {
		bno := sb.inodeBlockFor(inum)
		b, err := bread(sb.dev, bno)
		if err != nil {
			return nil, err
		}

		off := dinodeOffset(inum)
		curType := int16(binary.LittleEndian.Uint16(b.data[off : off+2]))
		if curType != T_FREE {
			brelse(b)
			continue
		}

		for i := 0; i < dinodeSize; i++ {
			b.data[off+i] = 0
		}
		binary.LittleEndian.PutUint16(b.data[off:off+2], uint16(typ))
		err = bwrite(b)
		brelse(b)
		if err != nil {
			return nil, err
		}

		return iget(sb, inum), nil
	}
	panic("xv6fs: no free inodes")
}
