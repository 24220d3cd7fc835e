//go:build !unix

// File: pool/page_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub mmap allocator for platforms without anonymous mappings.

package pool

import (
	"github.com/momentics/hioload-mempool/api"
)

// MmapAllocator is unavailable on this platform.
type MmapAllocator struct{}

// NewMmapAllocator always fails with api.ErrNotSupported.
func NewMmapAllocator() (*MmapAllocator, error) {
	return nil, errMmapUnsupported("new")
}

func (m *MmapAllocator) Alloc(size, align int) ([]byte, error) {
	return nil, errMmapUnsupported("alloc")
}

func (m *MmapAllocator) Free(page []byte) error { return errMmapUnsupported("free") }

func errMmapUnsupported(op string) error {
	return api.NewError(api.ErrCodeNotSupported, "mmap page allocator").
		WithContext("op", op).
		WithCause(api.ErrNotSupported)
}

func (m *MmapAllocator) Name() string { return "mmap" }
