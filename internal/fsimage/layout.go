// Package fsimage decodes and bounds-checks the on-disk layout of an xv6
// style filesystem image: superblock, inode table, indirect blocks,
// directory blocks, and the free-block bitmap.
package fsimage

import "encoding/binary"

// BSIZE is the fixed block size of an xv6 image, in bytes.
const BSIZE = 512

// RootInode is the inode number of the filesystem root directory.
const RootInode = 1

// NDirect is the number of direct block pointers in an inode.
const NDirect = 12

// NIndirect is the number of block addresses packed into one indirect block.
const NIndirect = BSIZE / 4

// DirSiz is the length, in bytes, of the name field of a directory entry.
const DirSiz = 14

// dinodeSize is the on-disk size of a struct dinode: four uint16 (type,
// major, minor, nlink), size uint32, and 13 uint32 block addresses.
const dinodeSize = 2 + 2 + 2 + 2 + 4 + 4*(NDirect+1)

// direntSize is the on-disk size of a struct dirent: a uint16 inum plus a
// DirSiz-byte name.
const direntSize = 2 + DirSiz

// IPB is the number of inodes packed into one block.
const IPB = BSIZE / dinodeSize

// BPB is the number of bits (one per block) packed into one bitmap block.
const BPB = BSIZE * 8

// DPB is the number of directory entries packed into one directory block.
// DPB*direntSize is not in general equal to BSIZE; trailing bytes of a
// directory block that don't form a full dirent are never visited.
const DPB = BSIZE / direntSize

// Inode type codes, straight from xv6's fs.h.
const (
	TypeUnallocated = 0
	TypeDirectory   = 1
	TypeFile        = 2
	TypeDevice      = 3
)

// Superblock holds the three fields xv6 persists at block 1.
type Superblock struct {
	Size    uint32 // total blocks in the image
	NBlocks uint32 // data blocks
	NInodes uint32 // inode count
}

func decodeSuperblock(block []byte) Superblock {
	return Superblock{
		Size:    binary.LittleEndian.Uint32(block[0:4]),
		NBlocks: binary.LittleEndian.Uint32(block[4:8]),
		NInodes: binary.LittleEndian.Uint32(block[8:12]),
	}
}

// FirstDataBlock returns db1, the first block index that may legitimately
// hold file data: the block immediately past the inode table and the
// bitmap region.
func (sb Superblock) FirstDataBlock() uint32 {
	inodeBlocks := ceilDiv(sb.NInodes, IPB)
	bitmapBlocks := ceilDiv(sb.Size, BPB)
	return inodeBlocks + bitmapBlocks + 2
}

func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}

// Dinode is the raw, fixed-size on-disk inode record.
type Dinode struct {
	Type  uint16
	Major uint16
	Minor uint16
	NLink uint16
	Size  uint32
	Addrs [NDirect + 1]uint32 // direct[0..11], then the indirect slot
}

func decodeDinode(raw []byte) Dinode {
	var d Dinode
	d.Type = binary.LittleEndian.Uint16(raw[0:2])
	d.Major = binary.LittleEndian.Uint16(raw[2:4])
	d.Minor = binary.LittleEndian.Uint16(raw[4:6])
	d.NLink = binary.LittleEndian.Uint16(raw[6:8])
	d.Size = binary.LittleEndian.Uint32(raw[8:12])
	off := 12
	for i := range d.Addrs {
		d.Addrs[i] = binary.LittleEndian.Uint32(raw[off : off+4])
		off += 4
	}
	return d
}

// IsAllocated reports whether this inode is currently in use.
func (d Dinode) IsAllocated() bool {
	return d.Type != TypeUnallocated
}

// Dirent is one decoded directory entry. An InodeNumber of 0 marks a
// vacant slot; callers that need to distinguish "." and ".." do so on
// Name.
type Dirent struct {
	InodeNumber uint16
	Name        string
}

func decodeDirent(raw []byte) Dirent {
	inum := binary.LittleEndian.Uint16(raw[0:2])
	name := raw[2 : 2+DirSiz]
	if nul := indexByte(name, 0); nul >= 0 {
		name = name[:nul]
	}
	return Dirent{InodeNumber: inum, Name: string(name)}
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
