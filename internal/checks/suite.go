package checks

import "github.com/dargueta/xv6fsck/internal/fsimage"

// Run executes every invariant in a fixed detection order — the per-inode
// pass (C1–C5), then the cross-inode passes (C6–C8), then the shared
// reference pass (C9–C12), then E1 and E2 — and returns the first error
// encountered, or nil if the image is clean. Detection order is fixed so
// failures are reproducible: verifying an unmodified image twice yields the
// same result.
func Run(v *fsimage.View) error {
	if err := perInodePass(v); err != nil {
		return err
	}
	if err := checkMarkedNotUsed(v); err != nil {
		return err
	}
	if err := checkDirectDup(v); err != nil {
		return err
	}
	if err := checkIndirectDup(v); err != nil {
		return err
	}

	idx, err := buildReferenceIndex(v)
	if err != nil {
		return err
	}
	if err := referencePass(v, idx); err != nil {
		return err
	}
	if err := checkParentMismatch(v, idx); err != nil {
		return err
	}
	if err := checkDirLoop(v, idx); err != nil {
		return err
	}

	return nil
}
