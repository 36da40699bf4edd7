package checks

import (
	"github.com/dargueta/xv6fsck/internal/fsckerr"
	"github.com/dargueta/xv6fsck/internal/fsimage"
)

// checkDirLoop is E2: starting from every directory, following ".." must
// reach the root without revisiting any directory — except the root's own
// self-loop, which is the one permitted cycle. Each directory has exactly
// one ".." edge, so the walk is a simple chain rather than a branching
// search; a visited set still catches cycles that never reach the root.
// A fresh visited set is allocated per starting directory and discarded at
// the end of that directory's walk.
func checkDirLoop(v *fsimage.View, idx *referenceIndex) error {
	for i := uint32(0); i < v.NInodes(); i++ {
		inode, err := v.Inode(i)
		if err != nil {
			return err
		}
		if !inode.IsAllocated() || inode.Type != fsimage.TypeDirectory {
			continue
		}

		visited := make(map[uint32]bool)
		current := i
		for current != fsimage.RootInode {
			if visited[current] {
				return fsckerr.ErrDirLoop
			}
			visited[current] = true

			parent, ok := idx.dotDotOf[current]
			if !ok {
				return fsckerr.ErrDirLoop
			}
			current = parent
		}
	}
	return nil
}
