// Package fsckdriver sequences a single run of the checker: acquire the
// image, decode its layout, run the invariant suite (or the repair pass),
// and release the image on every exit path.
package fsckdriver

import (
	"github.com/hashicorp/go-multierror"

	"github.com/dargueta/xv6fsck/internal/checks"
	"github.com/dargueta/xv6fsck/internal/fsimage"
	"github.com/dargueta/xv6fsck/internal/repair"
)

// Verify acquires the image at path read-only, decodes its layout, and runs
// the full invariant suite, returning the first failure (if any). The image
// is released on every exit path, success or failure.
func Verify(path string) (err error) {
	mapping, err := fsimage.Open(path, false)
	if err != nil {
		return err
	}
	defer func() {
		err = combineErrors(err, mapping.Close())
	}()

	view, err := fsimage.NewView(mapping.Bytes())
	if err != nil {
		return err
	}
	return checks.Run(view)
}

// Repair acquires the image at path read-write and re-attaches every
// orphaned in-use inode into lost+found. It does not re-run the verifier
// afterward.
func Repair(path string) (err error) {
	mapping, err := fsimage.Open(path, true)
	if err != nil {
		return err
	}
	defer func() {
		err = combineErrors(err, mapping.Close())
	}()

	view, err := fsimage.NewView(mapping.Bytes())
	if err != nil {
		return err
	}
	return repair.Run(view)
}

// combineErrors aggregates a primary error from the check/repair pass with
// a release error from unmapping the image, rather than letting either
// silently shadow the other.
func combineErrors(primary, release error) error {
	if primary == nil {
		return release
	}
	if release == nil {
		return primary
	}
	var result *multierror.Error
	result = multierror.Append(result, primary, release)
	return result
}
