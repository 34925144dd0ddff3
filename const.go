package xv6fs

// Disk geometry constants.
const (
	// BSIZE is the size in bytes of a disk block.
	BSIZE = 512

	// NDIRECT is the number of direct block pointers in a dinode.
	NDIRECT = 12

	// NINDIRECT is the number of uint32 words in one indirect block
	// (BSIZE/4). Half hold data-block pointers, half hold the paired
	// Adler-32 checksums for those pointers.
	NINDIRECT = BSIZE / 4

	// indirectCap is the number of data-block pointers a single
	// indirect block can hold (the other half of the block holds their
	// checksums).
	indirectCap = NINDIRECT / 2

	// rootCap is the number of inner-indirect-block pointers the
	// double-indirect root block holds. The root carries no paired
	// checksums, so it uses the full block.
	rootCap = NINDIRECT

	// DIRSIZ is the maximum length in bytes of a file name component.
	DIRSIZ = 14

	// NINODE is the number of in-memory inode-cache slots.
	NINODE = 50

	// ROOTINO is the inode number of the root directory.
	ROOTINO = 1

	// ROOTDEV is the device number Stati reports for a mount that has
	// no device number of its own.
	ROOTDEV = 1

	// NADDRS is the length of a dinode's address array: NDIRECT direct
	// slots, one single-indirect slot, one double-indirect slot.
	NADDRS = NDIRECT + 2

	// NDEV is the number of device-major slots in the device dispatch
	// table.
	NDEV = 16
)

// MAXFILE is the maximum file length in blocks expressible by the
// three-tier block map: NDIRECT direct blocks, plus indirectCap blocks
// through the single-indirect slot, plus rootCap*indirectCap blocks
// through the double-indirect tree.
const MAXFILE = NDIRECT + indirectCap + rootCap*indirectCap

// dinodeSize is the on-disk byte size of one packed dinode: type,
// major, minor, nlink (int16 each), size (uint32), the address array
// and the checksum array.
const dinodeSize = 2 + 2 + 2 + 2 + 4 + NADDRS*4 + NDIRECT*4

// IPB is the number of on-disk inodes packed per inode block.
const IPB = BSIZE / dinodeSize

// BPB is the number of bitmap bits (one per data block) packed per
// bitmap block.
const BPB = BSIZE * 8

// direntSize is the on-disk byte size of one directory entry: a
// 16-bit inode number plus a DIRSIZ-byte name.
const direntSize = 2 + DIRSIZ

// DPB is the number of dirents packed per block.
const DPB = BSIZE / direntSize

// Inode types, stored on disk in the dinode.Type field. Zero means the
// slot is free.
const (
	T_FREE = 0
	T_DIR  = 1
	T_FILE = 2
	T_DEV  = 3
)

// Inode cache flags.
const (
	flagBusy = 1 << iota
	flagValid
)

func init() {
	if IPB < 1 {
		panic("xv6fs: BSIZE too small to hold one dinode")
	}
	if DPB < 1 {
		panic("xv6fs: BSIZE too small to hold one dirent")
	}
}
