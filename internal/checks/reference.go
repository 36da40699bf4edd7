package checks

import (
	"github.com/dargueta/xv6fsck/internal/fsckerr"
	"github.com/dargueta/xv6fsck/internal/fsimage"
)

// referenceIndex is the shared scratch built once and consumed by checks
// C9–C12 and E1: a reference count per inode (directory entries naming it,
// excluding "." and ".."), the set of directories that name each inode, and
// each directory's ".." target. Built fresh per run and discarded at the
// end of the reference pass.
type referenceIndex struct {
	refCount     map[uint32]int
	referencedBy map[uint32]map[uint32]bool // child inum -> set of parent inums naming it
	dotDotOf     map[uint32]uint32          // directory inum -> its ".." target
}

func buildReferenceIndex(v *fsimage.View) (*referenceIndex, error) {
	idx := &referenceIndex{
		refCount:     make(map[uint32]int),
		referencedBy: make(map[uint32]map[uint32]bool),
		dotDotOf:     make(map[uint32]uint32),
	}

	for i := uint32(0); i < v.NInodes(); i++ {
		inode, err := v.Inode(i)
		if err != nil {
			return nil, err
		}
		if !inode.IsAllocated() || inode.Type != fsimage.TypeDirectory {
			continue
		}

		entries, err := v.DirectoryEntries(inode)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			switch e.Name {
			case ".":
				continue
			case "..":
				idx.dotDotOf[i] = uint32(e.InodeNumber)
				continue
			}
			child := uint32(e.InodeNumber)
			idx.refCount[child]++
			if idx.referencedBy[child] == nil {
				idx.referencedBy[child] = make(map[uint32]bool)
			}
			idx.referencedBy[child][i] = true
		}
	}
	return idx, nil
}

// referencePass runs C9–C12 against the reference index.
func referencePass(v *fsimage.View, idx *referenceIndex) error {
	for i := uint32(0); i < v.NInodes(); i++ {
		inode, err := v.Inode(i)
		if err != nil {
			return err
		}

		if i >= 2 && inode.IsAllocated() && idx.refCount[i] == 0 {
			return fsckerr.ErrInodeUsedNotInDir
		}
		if idx.refCount[i] > 0 && !inode.IsAllocated() {
			return fsckerr.ErrInodeInDirNotUsed
		}
		if inode.IsAllocated() && inode.Type == fsimage.TypeFile {
			if int(inode.NLink) != idx.refCount[i] {
				return fsckerr.ErrBadRefCount
			}
		}
		if inode.IsAllocated() && inode.Type == fsimage.TypeDirectory {
			if idx.refCount[i] > 1 {
				return fsckerr.ErrDirMulti
			}
		}
	}
	return nil
}

// checkParentMismatch is E1: for every directory D other than the root, D's
// ".." must point to some directory P that itself contains a (non-dot)
// entry naming D. The root, whose ".." is itself, is not checked here.
func checkParentMismatch(v *fsimage.View, idx *referenceIndex) error {
	for i := uint32(0); i < v.NInodes(); i++ {
		inode, err := v.Inode(i)
		if err != nil {
			return err
		}
		if !inode.IsAllocated() || inode.Type != fsimage.TypeDirectory {
			continue
		}
		if i == fsimage.RootInode {
			continue
		}

		parent, ok := idx.dotDotOf[i]
		if !ok {
			return fsckerr.ErrParentMismatch
		}
		parentInode, err := v.Inode(parent)
		if err != nil {
			return err
		}
		if !parentInode.IsAllocated() || parentInode.Type != fsimage.TypeDirectory {
			return fsckerr.ErrParentMismatch
		}
		if !idx.referencedBy[i][parent] {
			return fsckerr.ErrParentMismatch
		}
	}
	return nil
}
