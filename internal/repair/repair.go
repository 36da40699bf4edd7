// Package repair implements the scope-limited orphan re-attachment pass:
// locate the configured lost+found directory, find every in-use inode with
// no directory entry, and thread it into the first vacant dirent of
// lost+found's direct blocks. It never touches nlink, never allocates new
// directory blocks, and never re-runs the verifier afterward.
package repair

import (
	"github.com/dargueta/xv6fsck/internal/fsckerr"
	"github.com/dargueta/xv6fsck/internal/fsimage"
)

// LostFoundInode is the inode number of the well-known lost+found
// directory. This depends entirely on the convention the image was
// generated with; the reference image used inode 29, but an implementation
// must treat this as a configuration constant rather than a literal
// sprinkled through the code.
const LostFoundInode = 29

// Run re-attaches every orphaned in-use inode (inode number >= 2, in use,
// with no directory entry referencing it) into the first vacant dirent
// found among lost+found's direct blocks.
func Run(v *fsimage.View) error {
	lostFound, err := v.Inode(LostFoundInode)
	if err != nil {
		return err
	}
	if !lostFound.IsAllocated() || lostFound.Type != fsimage.TypeDirectory {
		return fsckerr.ErrNoLostFound
	}

	refCount, err := countDirectoryReferences(v)
	if err != nil {
		return err
	}

	for i := uint32(2); i < v.NInodes(); i++ {
		inode, err := v.Inode(i)
		if err != nil {
			return err
		}
		if !inode.IsAllocated() || refCount[i] > 0 {
			continue
		}

		if err := attach(v, lostFound, i); err != nil {
			return err
		}
	}
	return nil
}

// countDirectoryReferences builds the same per-inode reference count the
// verifier's reference pass computes, scoped to this package so repair
// doesn't need to depend on the checks package.
func countDirectoryReferences(v *fsimage.View) (map[uint32]int, error) {
	counts := make(map[uint32]int)
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
			if e.Name == "." || e.Name == ".." {
				continue
			}
			counts[uint32(e.InodeNumber)]++
		}
	}
	return counts, nil
}

// attach finds the first vacant dirent among lostFound's direct blocks and
// sets its inode number to orphanInum. Only direct blocks are scanned —
// lost+found's indirect block, if any, is never consulted.
func attach(v *fsimage.View, lostFound fsimage.Dinode, orphanInum uint32) error {
	for _, addr := range lostFound.Addrs[:fsimage.NDirect] {
		if addr == 0 {
			continue
		}
		dirents, err := v.Dirents(addr)
		if err != nil {
			return err
		}
		for slot, e := range dirents {
			if e.InodeNumber != 0 {
				continue
			}
			raw, err := v.DirentSlot(addr, slot)
			if err != nil {
				return err
			}
			raw[0] = byte(orphanInum)
			raw[1] = byte(orphanInum >> 8)
			return nil
		}
	}
	return fsckerr.ErrLostFoundFull
}
