package fsimage

import (
	"os"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sys/unix"

	"github.com/dargueta/xv6fsck/internal/fsckerr"
)

// Mapping is a scoped acquisition of an image file: it owns both the open
// file descriptor and the memory mapping built on top of it, and releases
// both on Close regardless of which checks ran or whether they failed — a
// single owner of the underlying I/O resource for the lifetime of one
// verify or repair run.
type Mapping struct {
	file *os.File
	data []byte
}

// Open acquires the image at path. writable selects a shared, read-write
// mapping (for repair mode) versus a private, read-only one (for plain
// verification).
func Open(path string, writable bool) (*Mapping, error) {
	flag := os.O_RDONLY
	prot := unix.PROT_READ
	mapFlags := unix.MAP_PRIVATE
	if writable {
		flag = os.O_RDWR
		prot |= unix.PROT_WRITE
		mapFlags = unix.MAP_SHARED
	}

	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fsckerr.ErrImageNotFound.WithDetail(err.Error())
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fsckerr.ErrImageNotFound.WithDetail(err.Error())
	}
	if info.Size() == 0 {
		f.Close()
		return nil, fsckerr.ErrImageNotFound.WithDetail("image is empty")
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), prot, mapFlags)
	if err != nil {
		f.Close()
		return nil, fsckerr.ErrImageNotFound.WithDetail(err.Error())
	}

	return &Mapping{file: f, data: data}, nil
}

// Bytes returns the mapped byte span.
func (m *Mapping) Bytes() []byte {
	return m.data
}

// Close unmaps the image and closes the file descriptor. Both steps are
// attempted even if one fails, and their errors — if any — are aggregated
// rather than one silently shadowing the other.
func (m *Mapping) Close() error {
	var result *multierror.Error
	if m.data != nil {
		if err := unix.Munmap(m.data); err != nil {
			result = multierror.Append(result, err)
		}
		m.data = nil
	}
	if m.file != nil {
		if err := m.file.Close(); err != nil {
			result = multierror.Append(result, err)
		}
		m.file = nil
	}
	return result.ErrorOrNil()
}
