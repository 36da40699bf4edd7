package fsimage

// InodeAddresses returns the full sequence of block addresses an inode
// references: its NDirect direct slots, followed — if the indirect slot is
// non-zero — by all NIndirect entries of the indirect block. Zero addresses
// are reported verbatim, not skipped, so callers that distinguish "present"
// from "absent" still see them; callers that only want in-use blocks filter
// zeroes themselves. There is no recursion: xv6 only
// has single-level indirection.
func (v *View) InodeAddresses(d Dinode) ([]uint32, error) {
	addrs := make([]uint32, 0, NDirect+NIndirect)
	addrs = append(addrs, d.Addrs[:NDirect]...)

	indirectAddr := d.Addrs[NDirect]
	if indirectAddr == 0 {
		return addrs, nil
	}

	indirect, err := v.Indirect(indirectAddr)
	if err != nil {
		return nil, err
	}
	addrs = append(addrs, indirect[:]...)
	return addrs, nil
}

// DirectoryEntries returns every valid (non-vacant) directory entry across
// all of a directory inode's blocks, in inode-block order: direct blocks
// first, then the indirect block's entries if present. "." and ".." are
// surfaced like any other entry; predicates filter them as needed.
func (v *View) DirectoryEntries(d Dinode) ([]Dirent, error) {
	var entries []Dirent

	visit := func(blockAddr uint32) error {
		if blockAddr == 0 {
			return nil
		}
		dirents, err := v.Dirents(blockAddr)
		if err != nil {
			return err
		}
		for _, de := range dirents {
			if de.InodeNumber == 0 {
				continue
			}
			entries = append(entries, de)
		}
		return nil
	}

	for _, addr := range d.Addrs[:NDirect] {
		if err := visit(addr); err != nil {
			return nil, err
		}
	}

	indirectAddr := d.Addrs[NDirect]
	if indirectAddr != 0 {
		indirect, err := v.Indirect(indirectAddr)
		if err != nil {
			return nil, err
		}
		for _, addr := range indirect {
			if err := visit(addr); err != nil {
				return nil, err
			}
		}
	}

	return entries, nil
}
