package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dargueta/xv6fsck/internal/fsimage"
	"github.com/dargueta/xv6fsck/internal/fsimage/imagetest"
	"github.com/dargueta/xv6fsck/internal/repair"
)

const (
	totalBlocks    = uint32(48)
	ninodes        = uint32(repair.LostFoundInode) + 1
	rootDirBlock   = uint32(7)
	lostFoundBlock = uint32(8)
)

func writeCleanImage(t *testing.T) string {
	b := imagetest.New(t, totalBlocks, ninodes)

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

	path := filepath.Join(t.TempDir(), "image.img")
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0o644))
	return path
}

func writeOrphanImage(t *testing.T) string {
	b := imagetest.New(t, totalBlocks, ninodes)

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

	var orphanAddrs [fsimage.NDirect + 1]uint32
	orphanAddrs[0] = 20
	b.SetInode(3, fsimage.TypeFile, 1, 10, orphanAddrs)
	b.SetBitmap(20, true)

	path := filepath.Join(t.TempDir(), "orphan.img")
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0o644))
	return path
}

func TestRunRejectsMissingArgument(t *testing.T) {
	require.Equal(t, 1, run([]string{"xv6fsck"}))
}

func TestRunRejectsTooManyArguments(t *testing.T) {
	require.Equal(t, 1, run([]string{"xv6fsck", "a", "b"}))
}

func TestRunReportsImageNotFound(t *testing.T) {
	require.Equal(t, 1, run([]string{"xv6fsck", "/nonexistent/path/to/image.img"}))
}

func TestRunVerifySucceedsOnCleanImage(t *testing.T) {
	path := writeCleanImage(t)
	require.Equal(t, 0, run([]string{"xv6fsck", path}))
}

func TestRunVerifyFailsOnOrphanImage(t *testing.T) {
	path := writeOrphanImage(t)
	require.Equal(t, 1, run([]string{"xv6fsck", path}))
}

func TestRunRepairFixesOrphanThenVerifyPasses(t *testing.T) {
	path := writeOrphanImage(t)
	require.Equal(t, 0, run([]string{"xv6fsck", "-r", path}))
	require.Equal(t, 0, run([]string{"xv6fsck", path}))
}
