//go:build unix

package pool

import (
	"os"
	"testing"
	"unsafe"

	"github.com/momentics/hioload-mempool/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMmapAllocator_RoundTrip(t *testing.T) {
	m, err := NewMmapAllocator()
	require.NoError(t, err)

	mem, err := m.Alloc(700, pageAlign)
	require.NoError(t, err)
	require.Len(t, mem, 700)
	assert.Equal(t, os.Getpagesize(), cap(mem))
	assert.Zero(t, uintptr(unsafe.Pointer(unsafe.SliceData(mem)))%uintptr(os.Getpagesize()))

	for i := range mem {
		assert.Zero(t, mem[i])
		mem[i] = byte(i)
	}
	require.NoError(t, m.Free(mem))
}

func TestMmapAllocator_BacksPool(t *testing.T) {
	m, err := NewMmapAllocator()
	require.NoError(t, err)
	counted := NewCountingAllocator(m)

	p, err := New(WithAllocator(counted), WithPageCapacity(256))
	require.NoError(t, err)

	type rec struct {
		ID   uint32
		Body [200]byte
	}
	h, err := Allocate(p, rec{ID: 42})
	require.NoError(t, err)
	assert.Equal(t, uint32(42), h.Value().ID)
	require.NoError(t, h.Release())

	o, err := Allocate(p, [4096]byte{4095: 1})
	require.NoError(t, err)
	assert.True(t, o.Overflow())
	require.NoError(t, o.Release())

	require.NoError(t, p.Close())
	assert.Equal(t, counted.Allocs(), counted.Frees())
}

func TestMmapAllocator_RejectsHugeAlignment(t *testing.T) {
	m, err := NewMmapAllocator()
	require.NoError(t, err)
	_, err = m.Alloc(16, 2*os.Getpagesize())
	assert.ErrorIs(t, err, api.ErrNotSupported)
	assert.Equal(t, api.ErrCodeNotSupported, api.CodeOf(err))
}

type mmapSession struct {
	ID      uint64
	Payload [120]byte
}

var mmapSessionDestroys int

func (s *mmapSession) Destroy() {
	mmapSessionDestroys++
	s.Payload[0] = 0xAA
}

func TestMmapAllocator_ReleaseAfterCloseDoesNotTouchUnmappedPage(t *testing.T) {
	m, err := NewMmapAllocator()
	require.NoError(t, err)
	counted := NewCountingAllocator(m)
	p, err := New(WithAllocator(counted), WithPageCapacity(256))
	require.NoError(t, err)
	mmapSessionDestroys = 0

	live, err := Allocate(p, mmapSession{ID: 1})
	require.NoError(t, err)
	require.False(t, live.Overflow())
	over, err := Allocate(p, [8192]byte{})
	require.NoError(t, err)
	require.True(t, over.Overflow())

	require.NoError(t, p.Close())
	require.Equal(t, uint64(1), counted.Frees())

	assert.Nil(t, live.Value())
	err = live.Release()
	assert.ErrorIs(t, err, api.ErrPoolClosed)
	assert.Equal(t, api.ErrCodeClosed, api.CodeOf(err))
	assert.Zero(t, mmapSessionDestroys)

	require.NotNil(t, over.Value())
	require.NoError(t, over.Release())
	assert.Equal(t, counted.Allocs(), counted.Frees())
}
