// Package checks implements the fourteen structural invariants (checks
// 1–12, E1, E2) over a decoded fsimage.View, each as a pure predicate. The
// suite runs them in a fixed order (see Run) and surfaces the first
// failure.
package checks

import (
	"github.com/dargueta/xv6fsck/internal/fsckerr"
	"github.com/dargueta/xv6fsck/internal/fsimage"
)

// perInodePass runs checks C1–C5 against every in-use inode, inode 0 first
// through ninodes-1, short-circuiting on the first failure. It returns the
// error from whichever check failed, or nil if every in-use inode passed
// all five.
func perInodePass(v *fsimage.View) error {
	for i := uint32(0); i < v.NInodes(); i++ {
		inode, err := v.Inode(i)
		if err != nil {
			return err
		}
		if !inode.IsAllocated() {
			if i == fsimage.RootInode {
				return fsckerr.ErrNoRoot
			}
			continue
		}

		if err := checkBadInode(inode); err != nil {
			return err
		}
		if err := checkBadDirect(v, inode); err != nil {
			return err
		}
		if err := checkBadIndirect(v, inode); err != nil {
			return err
		}
		if i == fsimage.RootInode {
			if err := checkRoot(v, inode); err != nil {
				return err
			}
		} else if inode.Type == fsimage.TypeDirectory {
			if err := checkDirFormat(v, i, inode); err != nil {
				return err
			}
		}
		if err := checkAddrUsedMarked(v, inode); err != nil {
			return err
		}
	}
	return nil
}

// C1: every allocated inode has a recognized type.
func checkBadInode(inode fsimage.Dinode) error {
	switch inode.Type {
	case fsimage.TypeDirectory, fsimage.TypeFile, fsimage.TypeDevice:
		return nil
	default:
		return fsckerr.ErrBadInode
	}
}

// C2a: every non-zero direct address is in [0, size).
func checkBadDirect(v *fsimage.View, inode fsimage.Dinode) error {
	size := v.Superblock.Size
	for _, a := range inode.Addrs[:fsimage.NDirect] {
		if a == 0 {
			continue
		}
		if a >= size {
			return fsckerr.ErrBadDirectAddress
		}
	}
	return nil
}

// C2b: the indirect slot, and every address inside the indirect block, is
// in [0, size).
func checkBadIndirect(v *fsimage.View, inode fsimage.Dinode) error {
	indirectAddr := inode.Addrs[fsimage.NDirect]
	if indirectAddr == 0 {
		return nil
	}
	size := v.Superblock.Size
	if indirectAddr >= size {
		return fsckerr.ErrBadIndirectAddress
	}

	entries, err := v.Indirect(indirectAddr)
	if err != nil {
		return err
	}
	for _, a := range entries {
		if a == 0 {
			continue
		}
		if a >= size {
			return fsckerr.ErrBadIndirectAddress
		}
	}
	return nil
}

// C3: the root inode is a directory and its "." and ".." both point to
// itself.
func checkRoot(v *fsimage.View, inode fsimage.Dinode) error {
	if inode.Type != fsimage.TypeDirectory {
		return fsckerr.ErrNoRoot
	}
	dot, dotdot, ok := findDotEntries(v, inode)
	if !ok || dot.InodeNumber != fsimage.RootInode || dotdot.InodeNumber != fsimage.RootInode {
		return fsckerr.ErrNoRoot
	}
	return nil
}

// C4: a non-root directory's "." points to itself and ".." is present.
func checkDirFormat(v *fsimage.View, inum uint32, inode fsimage.Dinode) error {
	dot, _, ok := findDotEntries(v, inode)
	if !ok {
		return fsckerr.ErrBadDir
	}
	if dot.InodeNumber != uint16(inum) {
		return fsckerr.ErrBadDir
	}
	return nil
}

// findDotEntries scans a directory's entries for "." and "..", returning
// whether both were found.
func findDotEntries(v *fsimage.View, inode fsimage.Dinode) (dot, dotdot fsimage.Dirent, bothFound bool) {
	entries, err := v.DirectoryEntries(inode)
	if err != nil {
		return dot, dotdot, false
	}
	var haveDot, haveDotDot bool
	for _, e := range entries {
		switch e.Name {
		case ".":
			dot = e
			haveDot = true
		case "..":
			dotdot = e
			haveDotDot = true
		}
	}
	return dot, dotdot, haveDot && haveDotDot
}

// C5: every non-zero block this inode references is marked allocated in
// the bitmap. Like C6's used-block set, this covers the indirect block
// itself as well as the direct addresses and the indirect block's contents.
func checkAddrUsedMarked(v *fsimage.View, inode fsimage.Dinode) error {
	addrs, err := v.InodeAddresses(inode)
	if err != nil {
		return err
	}
	if indirectAddr := inode.Addrs[fsimage.NDirect]; indirectAddr != 0 {
		addrs = append(addrs, indirectAddr)
	}
	for _, a := range addrs {
		if a == 0 {
			continue
		}
		allocated, err := v.BitmapBit(a)
		if err != nil {
			return err
		}
		if !allocated {
			return fsckerr.ErrAddrUsedNotMarked
		}
	}
	return nil
}
