//go:build !unix

package pool

import (
	"testing"

	"github.com/momentics/hioload-mempool/api"
	"github.com/stretchr/testify/assert"
)

func TestMmapAllocator_UnsupportedIsTyped(t *testing.T) {
	_, err := NewMmapAllocator()
	assert.ErrorIs(t, err, api.ErrNotSupported)
	assert.Equal(t, api.ErrCodeNotSupported, api.CodeOf(err))

	_, err = AllocatorByName("mmap")
	assert.Equal(t, api.ErrCodeNotSupported, api.CodeOf(err))

	var m MmapAllocator
	_, err = m.Alloc(64, 16)
	assert.Equal(t, api.ErrCodeNotSupported, api.CodeOf(err))
	assert.Equal(t, api.ErrCodeNotSupported, api.CodeOf(m.Free(nil)))
}
