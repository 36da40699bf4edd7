// Package fsckerr defines the sentinel errors the checker reports, one per
// structural invariant plus the environmental failure modes, each wired to
// the canonical operator-facing message from the on-disk format spec.
package fsckerr

import "fmt"

// CheckError is the error type every invariant and environmental failure
// returns: a sentinel comparable with errors.Is, with a WithDetail method
// for attaching context without losing that identity.
type CheckError interface {
	error
	WithDetail(detail string) CheckError
}

// Sentinel is a named, message-carrying CheckError usable as a package-level
// constant and compared against with errors.Is.
type Sentinel string

func (e Sentinel) Error() string { return string(e) }

// WithDetail wraps the sentinel in a detailedError that still unwraps back
// to the sentinel, so callers can both print a richer message and test
// identity with errors.Is(err, fsckerr.ErrBadInode).
func (e Sentinel) WithDetail(detail string) CheckError {
	return detailedError{sentinel: e, detail: detail}
}

type detailedError struct {
	sentinel Sentinel
	detail   string
}

func (e detailedError) Error() string {
	return fmt.Sprintf("%s (%s)", e.sentinel, e.detail)
}

func (e detailedError) WithDetail(detail string) CheckError {
	return detailedError{sentinel: e.sentinel, detail: detail}
}

func (e detailedError) Unwrap() error {
	return e.sentinel
}

// Environmental failures: unable to acquire the image at all.
const (
	ErrImageNotFound  = Sentinel("image not found.")
	ErrUsage          = Sentinel("Usage: xv6_fsck <file_system_image>.")
	ErrMalformedImage = Sentinel("image is too short to contain a valid layout")
)

// Structural failures, one per invariant in detection order. The Error()
// text is NOT the canonical stderr line (see CanonicalMessage for that mapping);
// it is a programmer-facing description used when detail is attached.
const (
	ErrBadInode           = Sentinel("bad inode type")
	ErrBadDirectAddress   = Sentinel("bad direct address in inode")
	ErrBadIndirectAddress = Sentinel("bad indirect address in inode")
	ErrNoRoot             = Sentinel("root directory does not exist")
	ErrBadDir             = Sentinel("directory not properly formatted")
	ErrAddrUsedNotMarked  = Sentinel("address used by inode but marked free in bitmap")
	ErrMarkedNotUsed      = Sentinel("bitmap marks block in use but it is not in use")
	ErrDirectDup          = Sentinel("direct address used more than once")
	ErrIndirectDup        = Sentinel("indirect address used more than once")
	ErrInodeUsedNotInDir  = Sentinel("inode marked use but not found in a directory")
	ErrInodeInDirNotUsed  = Sentinel("inode referred to in directory but marked free")
	ErrBadRefCount        = Sentinel("bad reference count for file")
	ErrDirMulti           = Sentinel("directory appears more than once in file system")
	ErrParentMismatch     = Sentinel("parent directory mismatch")
	ErrDirLoop            = Sentinel("inaccessible directory exists")
)

// Repair-pass failures.
const (
	ErrNoLostFound   = Sentinel("lost+found inode is not a directory")
	ErrLostFoundFull = Sentinel("lost+found has no vacant directory entry")
)
