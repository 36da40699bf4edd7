package fsckerr

import "errors"

// canonicalMessages maps each sentinel to the byte-exact, newline-terminated
// line the CLI prints to stderr. Order matches the detection order of the
// invariants themselves; it's irrelevant to lookup but keeps this table
// easy to audit against the invariant list.
var canonicalMessages = []struct {
	sentinel Sentinel
	message  string
}{
	{ErrImageNotFound, "image not found."},
	{ErrBadInode, "ERROR: bad inode."},
	{ErrBadDirectAddress, "ERROR: bad direct address in inode."},
	{ErrBadIndirectAddress, "ERROR: bad indirect address in inode."},
	{ErrNoRoot, "ERROR: root directory does not exist."},
	{ErrBadDir, "ERROR: directory not properly formatted."},
	{ErrAddrUsedNotMarked, "ERROR: address used by inode but marked free in bitmap."},
	{ErrMarkedNotUsed, "ERROR: bitmap marks block in use but it is not in use."},
	{ErrDirectDup, "ERROR: direct address used more than once."},
	{ErrIndirectDup, "ERROR: indirect address used more than once."},
	{ErrInodeUsedNotInDir, "ERROR: inode marked use but not found in a directory."},
	{ErrInodeInDirNotUsed, "ERROR: inode referred to in directory but marked free."},
	{ErrBadRefCount, "ERROR: bad reference count for file."},
	{ErrDirMulti, "ERROR: directory appears more than once in file system."},
	{ErrParentMismatch, "ERROR: parent directory mismatch."},
	{ErrDirLoop, "ERROR: inaccessible directory exists."},
}

// CanonicalMessage returns the byte-exact stderr line for err, ignoring any
// attached WithDetail context, so environmental errors wrapped with OS
// detail (e.g. "image not found." plus the underlying os.PathError) still
// print exactly the required wording. ok is false for errors this table
// doesn't recognize (e.g. a malformed-image bounds failure, which has no
// canonical external wording), in which case the caller should fall back
// to err.Error().
func CanonicalMessage(err error) (message string, ok bool) {
	for _, entry := range canonicalMessages {
		if errors.Is(err, entry.sentinel) {
			return entry.message, true
		}
	}
	return "", false
}
