// Package imagetest builds synthetic xv6 filesystem images in memory for
// tests, constructed field-by-field in Go rather than loaded from a fixture
// file, since the checker's test images are small and need precise,
// individually-broken invariants.
package imagetest

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dargueta/xv6fsck/internal/fsimage"
)

// Builder assembles a raw xv6 image byte slice. Zero value is not usable;
// construct with New.
type Builder struct {
	t           *testing.T
	data        []byte
	ninodes     uint32
	bitmapBlock uint32
}

// New allocates a zeroed image of totalBlocks blocks and writes a superblock
// recording totalBlocks, nblocks (data blocks, i.e. total minus everything
// before db1), and ninodes.
func New(t *testing.T, totalBlocks, ninodes uint32) *Builder {
	data := make([]byte, uint64(totalBlocks)*fsimage.BSIZE)

	inodeBlocks := ceilDiv(ninodes, fsimage.IPB)
	bitmapBlocks := ceilDiv(totalBlocks, fsimage.BPB)
	db1 := inodeBlocks + bitmapBlocks + 2
	require.Less(t, db1, totalBlocks, "fixture too small to hold a data block")

	sbBlock := data[fsimage.BSIZE : 2*fsimage.BSIZE]
	binary.LittleEndian.PutUint32(sbBlock[0:4], totalBlocks)
	binary.LittleEndian.PutUint32(sbBlock[4:8], totalBlocks-db1)
	binary.LittleEndian.PutUint32(sbBlock[8:12], ninodes)

	b := &Builder{
		t:           t,
		data:        data,
		ninodes:     ninodes,
		bitmapBlock: inodeBlocks + 2,
	}

	// Blocks [0, db1) are always allocated.
	for blk := uint32(0); blk < db1; blk++ {
		b.SetBitmap(blk, true)
	}
	return b
}

// Bytes returns the assembled image. Subsequent mutation through the
// builder continues to affect the returned slice; call this only once the
// fixture is finished.
func (b *Builder) Bytes() []byte {
	return b.data
}

const dinodeSize = 2 + 2 + 2 + 2 + 4 + 4*(fsimage.NDirect+1)
const direntSize = 2 + fsimage.DirSiz

func (b *Builder) inodeOffset(inum uint32) int {
	require.Less(b.t, inum, b.ninodes, "inode number out of range for fixture")
	blockIdx := inum/fsimage.IPB + 2
	blockOff := int(blockIdx) * fsimage.BSIZE
	return blockOff + int(inum%fsimage.IPB)*dinodeSize
}

// SetInode writes type/nlink/size/addrs for inode number inum.
func (b *Builder) SetInode(inum uint32, typ uint16, nlink uint16, size uint32, addrs [fsimage.NDirect + 1]uint32) {
	off := b.inodeOffset(inum)
	binary.LittleEndian.PutUint16(b.data[off:off+2], typ)
	// major/minor left zero
	binary.LittleEndian.PutUint16(b.data[off+6:off+8], nlink)
	binary.LittleEndian.PutUint32(b.data[off+8:off+12], size)
	addrOff := off + 12
	for i, a := range addrs {
		binary.LittleEndian.PutUint32(b.data[addrOff+i*4:addrOff+i*4+4], a)
	}
}

// SetDirentBlock writes a sequence of (name, inum) entries into data block
// addr as a directory block, zero-padding any unused slots.
func (b *Builder) SetDirentBlock(addr uint32, entries []DirentSpec) {
	require.LessOrEqual(b.t, len(entries), fsimage.DPB, "too many dirents for one block")
	blockOff := int(addr) * fsimage.BSIZE
	block := b.data[blockOff : blockOff+fsimage.BSIZE]
	for i, e := range entries {
		off := i * direntSize
		binary.LittleEndian.PutUint16(block[off:off+2], e.Inum)
		copy(block[off+2:off+2+fsimage.DirSiz], e.Name)
	}
}

// DirentSpec is one directory entry to place with SetDirentBlock.
type DirentSpec struct {
	Inum uint16
	Name string
}

// SetIndirect writes the given block addresses (at most NIndirect) into the
// leading slots of indirect block addr.
func (b *Builder) SetIndirect(addr uint32, addrs []uint32) {
	require.LessOrEqual(b.t, len(addrs), fsimage.NIndirect, "too many addresses for one indirect block")
	blockOff := int(addr) * fsimage.BSIZE
	block := b.data[blockOff : blockOff+fsimage.BSIZE]
	for i, a := range addrs {
		binary.LittleEndian.PutUint32(block[i*4:i*4+4], a)
	}
}

// SetBitmap sets or clears the allocation bit for block b.
func (b *Builder) SetBitmap(blk uint32, allocated bool) {
	blockIdx := b.bitmapBlock + blk/fsimage.BPB
	blockOff := int(blockIdx) * fsimage.BSIZE
	byteIdx := (blk % fsimage.BPB) / 8
	bitIdx := uint(blk % 8)
	ptr := &b.data[blockOff+int(byteIdx)]
	if allocated {
		*ptr |= 1 << bitIdx
	} else {
		*ptr &^= 1 << bitIdx
	}
}

func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}
