//go:build unix

// File: pool/page_mmap_unix.go
// Author: momentics <momentics@gmail.com>
//
// Anonymous-mapping page allocator for unix platforms.

package pool

import (
	"github.com/momentics/hioload-mempool/api"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// MmapAllocator backs every page with a private anonymous mapping.
// Regions are OS-page aligned and invisible to the garbage collector.
type MmapAllocator struct {
	osPage int
}

// NewMmapAllocator returns the mmap backend.
func NewMmapAllocator() (*MmapAllocator, error) {
	return &MmapAllocator{osPage: unix.Getpagesize()}, nil
}

// Alloc maps size bytes rounded up to whole OS pages. The returned slice has
// len size and keeps the full mapping as its capacity, which Free relies on.
func (m *MmapAllocator) Alloc(size, align int) ([]byte, error) {
	if size <= 0 || align <= 0 || align&(align-1) != 0 {
		return nil, errors.Wrapf(api.ErrInvalidArgument, "mmap alloc size=%d align=%d", size, align)
	}
	if align > m.osPage {
		return nil, api.NewError(api.ErrCodeNotSupported, "mmap alignment exceeds os page").
			WithContext("align", align).
			WithContext("os_page", m.osPage).
			WithCause(api.ErrNotSupported)
	}
	n := (size + m.osPage - 1) &^ (m.osPage - 1)
	mem, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(api.ErrOutOfMemory, "mmap %d bytes: %v", n, err)
	}
	return mem[:size], nil
}

// Free unmaps a region returned by Alloc.
func (m *MmapAllocator) Free(page []byte) error {
	if cap(page) == 0 {
		return errors.Wrap(api.ErrInvalidArgument, "munmap empty region")
	}
	if err := unix.Munmap(page[:cap(page)]); err != nil {
		return errors.Wrap(err, "munmap")
	}
	return nil
}

func (m *MmapAllocator) Name() string { return "mmap" }
