package xv6fs

import (
	"bytes"
	"encoding/binary"
	"reflect"
)

// magic identifies a block 1 as an xv6fs superblock.
const magic = 0x78763666 // "xv6f" as little-endian uint32

// Superblock is the in-memory parse of block 1. Fields beyond the
// minimal {size, nblocks, ninodes} triple are precomputed layout
// offsets, the way a real xv6-derived superblock also carries (e.g.
// inodestart/bmapstart) rather than requiring every mount to
// re-derive them from ninodes/size.
type Superblock struct {
	dev   Device
	devID uint32 // device number Stati reports this mount as (ROOTDEV when zero)

	Magic       uint32
	Size        uint32 // total device size in blocks
	NBlocks     uint32 // number of data blocks
	NInodes     uint32 // number of inodes
	InodeStart  uint32 // block number of the first inode block
	BitmapStart uint32 // block number of the first bitmap block
	DataStart   uint32 // block number of the first data block
}

// binaryFields returns the exported fields in declaration order, a
// reflect-driven technique that avoids hand-listing every binary.Read
// call.
func binaryFields(v reflect.Value) []reflect.Value {
	t := v.Type()
	fields := make([]reflect.Value, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Name
		if name[0] < 'A' || name[0] > 'Z' {
			continue // unexported, e.g. dev
		}
		fields = append(fields, v.Field(i))
	}
	return fields
}

func superblockSize() int {
	sz := 0
	v := reflect.ValueOf(&Superblock{}).Elem()
	for _, f := range binaryFields(v) {
		sz += int(f.Type().Size())
	}
	return sz
}

// ReadSuperblock parses block 1 of dev into an in-memory Superblock.
func ReadSuperblock(dev Device) (*Superblock, error) {
	buf := make([]byte, superblockSize())
	if _, err := dev.ReadAt(buf, BSIZE); err != nil {
		return nil, err
	}

	sb := &Superblock{dev: dev}
	if err := sb.unmarshal(buf); err != nil {
		return nil, err
	}
	return sb, nil
}

func (sb *Superblock) unmarshal(data []byte) error {
	r := bytes.NewReader(data)
	v := reflect.ValueOf(sb).Elem()
	for _, f := range binaryFields(v) {
		if err := binary.Read(r, binary.LittleEndian, f.Addr().Interface()); err != nil {
			return err
		}
	}
	if sb.Magic != magic {
		return ErrInvalidSuper
	}
	return nil
}

func (sb *Superblock) marshal() []byte {
	buf := &bytes.Buffer{}
	v := reflect.ValueOf(sb).Elem()
	for _, f := range binaryFields(v) {
		binary.Write(buf, binary.LittleEndian, f.Interface())
	}
	return buf.Bytes()
}

// writeSuperblock persists sb to block 1 of its device.
func (sb *Superblock) writeSuperblock() error {
	_, err := sb.dev.WriteAt(sb.marshal(), BSIZE)
	if err != nil {
		return err
	}
	return sb.dev.Sync()
}

// inodeBlockFor returns the inode-table block holding inum's dinode.
func (sb *Superblock) inodeBlockFor(inum uint32) uint32 {
	return sb.InodeStart + inum/IPB
}

// bitmapBlockFor returns the bitmap block holding the bit for data
// block bno.
func (sb *Superblock) bitmapBlockFor(bno uint32) uint32 {
	return sb.BitmapStart + bno/BPB
}

// deviceID returns the device number this Superblock is mounted as,
// the value Stati reports.
func (sb *Superblock) deviceID() uint32 {
	if sb.devID == 0 {
		return ROOTDEV
	}
	return sb.devID
}
