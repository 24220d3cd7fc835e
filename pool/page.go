// File: pool/page.go
// Author: momentics <momentics@gmail.com>
//
// Pages, their side-table tags and the portable page allocators.
// Platform-specific backends live in page_mmap_unix.go and page_stub.go.

package pool

import (
	"strings"
	"sync/atomic"
	"unsafe"

	"github.com/momentics/hioload-mempool/api"
	"github.com/pkg/errors"
)

// Tag identifies the owner of a page: a slot index in [0, SlotCount) or
// OverflowTag for pages that bypass the directory.
type Tag uint8

// OverflowTag marks pages allocated outside the slot directory.
const OverflowTag Tag = 0xFF

// IsOverflow reports whether t marks an overflow page.
func (t Tag) IsOverflow() bool { return t == OverflowTag }

// page is one materialized region plus its owner tag. The tag is kept next
// to the memory instead of inside it, so payloads start on an aligned address.
type page struct {
	mem []byte
	tag Tag
}

// pageAlign is the alignment every slot page is requested with.
const pageAlign = 16

// HeapAllocator serves pages from the Go heap. Freed pages are left to the
// garbage collector. This is the default backend.
type HeapAllocator struct{}

// NewHeapAllocator returns the heap backend.
func NewHeapAllocator() *HeapAllocator { return &HeapAllocator{} }

// Alloc returns size zeroed bytes starting on an align boundary.
func (h *HeapAllocator) Alloc(size, align int) ([]byte, error) {
	if size <= 0 || align <= 0 || align&(align-1) != 0 {
		return nil, errors.Wrapf(api.ErrInvalidArgument, "heap alloc size=%d align=%d", size, align)
	}
	raw := make([]byte, size+align-1)
	off := alignOffset(unsafe.Pointer(unsafe.SliceData(raw)), align)
	return raw[off : off+size : off+size], nil
}

// Free is a no-op; the region becomes garbage once the pool drops it.
func (h *HeapAllocator) Free(page []byte) error { return nil }

func (h *HeapAllocator) Name() string { return "heap" }

// alignOffset returns the number of bytes to skip from p to reach an
// align boundary. align must be a power of two.
func alignOffset(p unsafe.Pointer, align int) int {
	a := uintptr(align)
	return int((a - uintptr(p)&(a-1)) & (a - 1))
}

// CountingAllocator decorates another allocator with call accounting.
type CountingAllocator struct {
	inner     api.PageAllocator
	allocs    atomic.Uint64
	frees     atomic.Uint64
	liveBytes atomic.Int64
}

// NewCountingAllocator wraps inner.
func NewCountingAllocator(inner api.PageAllocator) *CountingAllocator {
	return &CountingAllocator{inner: inner}
}

func (c *CountingAllocator) Alloc(size, align int) ([]byte, error) {
	mem, err := c.inner.Alloc(size, align)
	if err != nil {
		return nil, err
	}
	c.allocs.Add(1)
	c.liveBytes.Add(int64(len(mem)))
	return mem, nil
}

func (c *CountingAllocator) Free(page []byte) error {
	if err := c.inner.Free(page); err != nil {
		return err
	}
	c.frees.Add(1)
	c.liveBytes.Add(-int64(len(page)))
	return nil
}

func (c *CountingAllocator) Name() string { return "counting(" + c.inner.Name() + ")" }

// Allocs is the number of successful Alloc calls.
func (c *CountingAllocator) Allocs() uint64 { return c.allocs.Load() }

// Frees is the number of successful Free calls.
func (c *CountingAllocator) Frees() uint64 { return c.frees.Load() }

// LiveBytes is the number of bytes allocated and not yet freed.
func (c *CountingAllocator) LiveBytes() int64 { return c.liveBytes.Load() }

// AllocatorByName resolves a backend name as used in configuration.
func AllocatorByName(name string) (api.PageAllocator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "heap":
		return NewHeapAllocator(), nil
	case "mmap":
		m, err := NewMmapAllocator()
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, errors.Wrapf(api.ErrInvalidArgument, "unknown page allocator %q", name)
	}
}
