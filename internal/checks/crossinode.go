package checks

import (
	"github.com/dargueta/xv6fsck/internal/fsckerr"
	"github.com/dargueta/xv6fsck/internal/fsimage"
)

// usedBlocks computes U, the set of blocks referenced by any in-use inode,
// used by C6 (bitmap-marked-but-unused). It is per-run scratch, owned by
// the caller and discarded when the pass finishes.
//
// This must include the indirect block itself, not just the data blocks it
// points to: a file using single-indirect addressing legitimately marks
// that block allocated in the bitmap, so leaving it out of U would make C6
// reject valid images.
func usedBlocks(v *fsimage.View) (map[uint32]bool, error) {
	used := make(map[uint32]bool)
	for i := uint32(0); i < v.NInodes(); i++ {
		inode, err := v.Inode(i)
		if err != nil {
			return nil, err
		}
		if !inode.IsAllocated() {
			continue
		}
		if indirectAddr := inode.Addrs[fsimage.NDirect]; indirectAddr != 0 {
			used[indirectAddr] = true
		}
		addrs, err := v.InodeAddresses(inode)
		if err != nil {
			return nil, err
		}
		for _, a := range addrs {
			if a != 0 {
				used[a] = true
			}
		}
	}
	return used, nil
}

// checkMarkedNotUsed is C6: every block in [db1, nblocks) that the bitmap
// marks allocated must actually be referenced by some in-use inode.
func checkMarkedNotUsed(v *fsimage.View) error {
	used, err := usedBlocks(v)
	if err != nil {
		return err
	}

	db1 := v.FirstDataBlock()
	for b := db1; b < v.Superblock.NBlocks; b++ {
		allocated, err := v.BitmapBit(b)
		if err != nil {
			return err
		}
		if allocated && !used[b] {
			return fsckerr.ErrMarkedNotUsed
		}
	}
	return nil
}

// checkDirectDup is C7: the union of all direct addresses (excluding zero)
// across all in-use inodes has no duplicates.
func checkDirectDup(v *fsimage.View) error {
	seen := make(map[uint32]bool)
	for i := uint32(0); i < v.NInodes(); i++ {
		inode, err := v.Inode(i)
		if err != nil {
			return err
		}
		if !inode.IsAllocated() {
			continue
		}
		for _, a := range inode.Addrs[:fsimage.NDirect] {
			if a == 0 {
				continue
			}
			if seen[a] {
				return fsckerr.ErrDirectDup
			}
			seen[a] = true
		}
	}
	return nil
}

// checkIndirectDup is C8: no address appearing inside any inode's indirect
// block (excluding zero) is referenced by more than one such slot across
// the whole image.
func checkIndirectDup(v *fsimage.View) error {
	seen := make(map[uint32]bool)
	for i := uint32(0); i < v.NInodes(); i++ {
		inode, err := v.Inode(i)
		if err != nil {
			return err
		}
		if !inode.IsAllocated() {
			continue
		}
		indirectAddr := inode.Addrs[fsimage.NDirect]
		if indirectAddr == 0 {
			continue
		}
		entries, err := v.Indirect(indirectAddr)
		if err != nil {
			return err
		}
		for _, a := range entries {
			if a == 0 {
				continue
			}
			if seen[a] {
				return fsckerr.ErrIndirectDup
			}
			seen[a] = true
		}
	}
	return nil
}
