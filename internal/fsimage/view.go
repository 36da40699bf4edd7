package fsimage

import (
	"encoding/binary"
	"fmt"

	"github.com/dargueta/xv6fsck/internal/fsckerr"
)

// View exposes bounds-checked access to the decoded structures of an image:
// the superblock, the inode table, indirect blocks, directory blocks, and
// the free-block bitmap. Every accessor validates its starting block index
// against the span length before indexing into it instead of trusting
// on-disk addresses outright.
type View struct {
	data        []byte
	Superblock  Superblock
	db1         uint32
	bitmapBlock uint32
}

// NewView decodes the superblock from a byte span and returns a View over
// it. The span must be at least two blocks long (block 0 is unused, block 1
// holds the superblock); anything shorter is a malformed image.
func NewView(data []byte) (*View, error) {
	if len(data) < 2*BSIZE {
		return nil, fsckerr.ErrMalformedImage.WithDetail("image shorter than two blocks")
	}
	sb := decodeSuperblock(data[BSIZE : 2*BSIZE])
	if uint64(sb.Size)*BSIZE > uint64(len(data)) {
		return nil, fsckerr.ErrMalformedImage.WithDetail("superblock size exceeds image length")
	}

	v := &View{
		data:       data,
		Superblock: sb,
		db1:        sb.FirstDataBlock(),
	}
	v.bitmapBlock = ceilDiv(sb.NInodes, IPB) + 2
	return v, nil
}

// FirstDataBlock returns db1 (see Superblock.FirstDataBlock).
func (v *View) FirstDataBlock() uint32 {
	return v.db1
}

// block returns the raw bytes of block index b, bounds-checked against the
// image length.
func (v *View) block(b uint32) ([]byte, error) {
	start := uint64(b) * BSIZE
	end := start + BSIZE
	if end > uint64(len(v.data)) {
		return nil, fsckerr.ErrMalformedImage.WithDetail(
			fmt.Sprintf("block %d out of range for image of length %d", b, len(v.data)))
	}
	return v.data[start:end], nil
}

// NInodes returns the inode count recorded in the superblock.
func (v *View) NInodes() uint32 {
	return v.Superblock.NInodes
}

// Inode returns the decoded on-disk inode for inode number i. Inode numbers
// are in [0, NInodes); inode 0 is reserved and always unallocated.
func (v *View) Inode(i uint32) (Dinode, error) {
	if i >= v.Superblock.NInodes {
		return Dinode{}, fsckerr.ErrMalformedImage.WithDetail(
			fmt.Sprintf("inode %d out of range [0, %d)", i, v.Superblock.NInodes))
	}
	blockIdx := i/IPB + 2
	block, err := v.block(blockIdx)
	if err != nil {
		return Dinode{}, err
	}
	offset := int(i%IPB) * dinodeSize
	return decodeDinode(block[offset : offset+dinodeSize]), nil
}

// Indirect returns the NIndirect block addresses stored in indirect block
// `addr`. Callers must have already validated `addr` is in range (e.g. via
// check C2b); this is infallible by construction once that holds, but still
// bounds-checks against the image length defensively.
func (v *View) Indirect(addr uint32) ([NIndirect]uint32, error) {
	var out [NIndirect]uint32
	block, err := v.block(addr)
	if err != nil {
		return out, err
	}
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(block[i*4 : i*4+4])
	}
	return out, nil
}

// Dirents returns the DPB directory entries stored in directory block
// `addr`.
func (v *View) Dirents(addr uint32) ([DPB]Dirent, error) {
	var out [DPB]Dirent
	block, err := v.block(addr)
	if err != nil {
		return out, err
	}
	for i := range out {
		off := i * direntSize
		out[i] = decodeDirent(block[off : off+direntSize])
	}
	return out, nil
}

// BitmapBit reports whether block b is marked allocated in the free-block
// bitmap.
func (v *View) BitmapBit(b uint32) (bool, error) {
	block, err := v.block(v.bitmapBlock + b/BPB)
	if err != nil {
		return false, err
	}
	byteIdx := (b % BPB) / 8
	bitIdx := b % 8
	return (block[byteIdx]>>bitIdx)&1 == 1, nil
}

// DirentSlot returns a mutable view of directory entry slot `index` within
// block `addr`, for the repair pass to write a reclaimed inode number into.
func (v *View) DirentSlot(addr uint32, index int) ([]byte, error) {
	block, err := v.block(addr)
	if err != nil {
		return nil, err
	}
	off := index * direntSize
	return block[off : off+direntSize], nil
}

