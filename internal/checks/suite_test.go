package checks_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dargueta/xv6fsck/internal/checks"
	"github.com/dargueta/xv6fsck/internal/fsckerr"
	"github.com/dargueta/xv6fsck/internal/fsimage"
	"github.com/dargueta/xv6fsck/internal/fsimage/imagetest"
)

func runSuite(t *testing.T, b *imagetest.Builder) error {
	view, err := fsimage.NewView(b.Bytes())
	require.NoError(t, err)
	return checks.Run(view)
}

// A freshly generated clean image passes.
func TestCleanImagePasses(t *testing.T) {
	b := newBaseImage(t)

	var fileAddrs [fsimage.NDirect + 1]uint32
	fileAddrs[0] = 20
	b.SetInode(2, fsimage.TypeFile, 1, 5, fileAddrs)
	b.SetBitmap(20, true)

	// Reference the file from root so it isn't an orphan.
	b.SetDirentBlock(rootDirBlock, []imagetest.DirentSpec{
		{Inum: 1, Name: "."},
		{Inum: 1, Name: ".."},
		{Inum: uint16(29), Name: "lost+found"},
		{Inum: 2, Name: "hello.txt"},
	})

	assert.NoError(t, runSuite(t, b))
}

// Scenario 2: a bad inode type.
func TestBadInodeType(t *testing.T) {
	b := newBaseImage(t)
	var addrs [fsimage.NDirect + 1]uint32
	b.SetInode(2, 7, 0, 0, addrs)

	err := runSuite(t, b)
	require.Error(t, err)
	assert.ErrorIs(t, err, fsckerr.ErrBadInode)
}

// Scenario 3: direct address one past the end of the image.
func TestDirectAddressOverflow(t *testing.T) {
	b := newBaseImage(t)
	var addrs [fsimage.NDirect + 1]uint32
	addrs[0] = fixtureTotalBlocks // == size: out of range
	b.SetInode(2, fsimage.TypeFile, 1, 10, addrs)

	err := runSuite(t, b)
	require.Error(t, err)
	assert.ErrorIs(t, err, fsckerr.ErrBadDirectAddress)
}

// Scenario 4: an orphan inode with no directory entry.
func TestOrphanInode(t *testing.T) {
	b := newBaseImage(t)
	var addrs [fsimage.NDirect + 1]uint32
	addrs[0] = 20
	b.SetInode(3, fsimage.TypeFile, 1, 10, addrs)
	b.SetBitmap(20, true)
	// Deliberately do not reference inode 3 from any directory.

	err := runSuite(t, b)
	require.Error(t, err)
	assert.ErrorIs(t, err, fsckerr.ErrInodeUsedNotInDir)
}

// Scenario 5: a directory referenced from two different directories.
func TestDirectoryReferencedTwice(t *testing.T) {
	b := newBaseImage(t)

	// inode 4: a directory, to be referenced from both root and inode 5.
	var d4Addrs [fsimage.NDirect + 1]uint32
	d4Addrs[0] = 21
	b.SetInode(4, fsimage.TypeDirectory, 1, 0, d4Addrs)
	b.SetBitmap(21, true)
	b.SetDirentBlock(21, []imagetest.DirentSpec{
		{Inum: 4, Name: "."},
		{Inum: 1, Name: ".."},
	})

	// inode 5: another directory under root, with its own entry for inode 4.
	var d5Addrs [fsimage.NDirect + 1]uint32
	d5Addrs[0] = 22
	b.SetInode(5, fsimage.TypeDirectory, 1, 0, d5Addrs)
	b.SetBitmap(22, true)
	b.SetDirentBlock(22, []imagetest.DirentSpec{
		{Inum: 5, Name: "."},
		{Inum: 1, Name: ".."},
		{Inum: 4, Name: "again"},
	})

	b.SetDirentBlock(rootDirBlock, []imagetest.DirentSpec{
		{Inum: 1, Name: "."},
		{Inum: 1, Name: ".."},
		{Inum: uint16(29), Name: "lost+found"},
		{Inum: 4, Name: "d1"},
		{Inum: 5, Name: "d2"},
	})

	err := runSuite(t, b)
	require.Error(t, err)
	assert.ErrorIs(t, err, fsckerr.ErrDirMulti)
}

// Scenario 6: a ".." cycle between two non-root directories that still
// each satisfy E1 (their mutual parent pointers each resolve to a
// directory that names them), so only E2 catches it.
func TestDotDotCycle(t *testing.T) {
	b := newBaseImage(t)

	var aAddrs [fsimage.NDirect + 1]uint32
	aAddrs[0] = 23
	b.SetInode(10, fsimage.TypeDirectory, 1, 0, aAddrs)
	b.SetBitmap(23, true)

	var bAddrs [fsimage.NDirect + 1]uint32
	bAddrs[0] = 24
	b.SetInode(11, fsimage.TypeDirectory, 1, 0, bAddrs)
	b.SetBitmap(24, true)

	// A: "." -> A, ".." -> B, "b" -> B (the entry for B that satisfies E1
	// for B's parent pointer).
	b.SetDirentBlock(23, []imagetest.DirentSpec{
		{Inum: 10, Name: "."},
		{Inum: 11, Name: ".."},
		{Inum: 11, Name: "b"},
	})
	// B: "." -> B, ".." -> A, "a" -> A (the entry for A that satisfies E1
	// for A's parent pointer).
	b.SetDirentBlock(24, []imagetest.DirentSpec{
		{Inum: 11, Name: "."},
		{Inum: 10, Name: ".."},
		{Inum: 10, Name: "a"},
	})

	err := runSuite(t, b)
	require.Error(t, err)
	assert.ErrorIs(t, err, fsckerr.ErrDirLoop)
}

func TestNoRootFailsWhenRootIsNotADirectory(t *testing.T) {
	b := newBaseImage(t)
	var addrs [fsimage.NDirect + 1]uint32
	addrs[0] = rootDirBlock
	b.SetInode(fsimage.RootInode, fsimage.TypeFile, 1, 0, addrs)

	err := runSuite(t, b)
	require.Error(t, err)
	assert.ErrorIs(t, err, fsckerr.ErrNoRoot)
}

func TestBadRefCountForFile(t *testing.T) {
	b := newBaseImage(t)
	var addrs [fsimage.NDirect + 1]uint32
	addrs[0] = 20
	b.SetInode(2, fsimage.TypeFile, 2, 5, addrs) // nlink=2
	b.SetBitmap(20, true)
	b.SetDirentBlock(rootDirBlock, []imagetest.DirentSpec{
		{Inum: 1, Name: "."},
		{Inum: 1, Name: ".."},
		{Inum: uint16(29), Name: "lost+found"},
		{Inum: 2, Name: "hello.txt"}, // only one reference, but nlink says 2
	})

	err := runSuite(t, b)
	require.Error(t, err)
	assert.ErrorIs(t, err, fsckerr.ErrBadRefCount)
}

func TestCanonicalMessageMatchesSpec(t *testing.T) {
	msg, ok := fsckerr.CanonicalMessage(fsckerr.ErrBadInode)
	require.True(t, ok)
	assert.Equal(t, "ERROR: bad inode.", msg)

	msg, ok = fsckerr.CanonicalMessage(fsckerr.ErrDirLoop)
	require.True(t, ok)
	assert.Equal(t, "ERROR: inaccessible directory exists.", msg)

	_, ok = fsckerr.CanonicalMessage(errors.New("not a sentinel"))
	assert.False(t, ok)
}
