package checks_test

import (
	"testing"

	"github.com/dargueta/xv6fsck/internal/fsimage"
	"github.com/dargueta/xv6fsck/internal/fsimage/imagetest"
	"github.com/dargueta/xv6fsck/internal/repair"
)

// Fixture geometry shared by every test in this package: small enough to
// keep test images readable, large enough to hold a root directory, a
// lost+found at repair.LostFoundInode, and a handful of test-specific
// inodes and data blocks past db1.
const (
	fixtureTotalBlocks = 48
	fixtureNInodes     = uint32(repair.LostFoundInode) + 1
	rootDirBlock       = uint32(7) // db1 for this fixture's geometry (30 inodes, 48 blocks)
	lostFoundBlock     = uint32(8)
)

// newBaseImage builds a minimal valid image: root directory (inode 1)
// containing ".", "..", and an entry for lost+found, plus that properly
// formatted lost+found directory at repair.LostFoundInode. Callers add whatever
// inodes/dirents/bitmap bits their scenario needs on top of this.
func newBaseImage(t *testing.T) *imagetest.Builder {
	b := imagetest.New(t, fixtureTotalBlocks, fixtureNInodes)

	var rootAddrs [fsimage.NDirect + 1]uint32
	rootAddrs[0] = rootDirBlock
	b.SetInode(fsimage.RootInode, fsimage.TypeDirectory, 1, 0, rootAddrs)
	b.SetBitmap(rootDirBlock, true)
	b.SetDirentBlock(rootDirBlock, []imagetest.DirentSpec{
		{Inum: 1, Name: "."},
		{Inum: 1, Name: ".."},
		{Inum: uint16(repair.LostFoundInode), Name: "lost+found"},
	})

	var lfAddrs [fsimage.NDirect + 1]uint32
	lfAddrs[0] = lostFoundBlock
	b.SetInode(repair.LostFoundInode, fsimage.TypeDirectory, 1, 0, lfAddrs)
	b.SetBitmap(lostFoundBlock, true)
	b.SetDirentBlock(lostFoundBlock, []imagetest.DirentSpec{
		{Inum: uint16(repair.LostFoundInode), Name: "."},
		{Inum: 1, Name: ".."},
	})

	return b
}
