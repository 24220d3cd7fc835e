package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOccupancy_ClaimLowestFirst(t *testing.T) {
	var o occupancy
	for want := 0; want < SlotCount; want++ {
		got, ok := o.claim()
		require.True(t, ok)
		require.Equal(t, want, got)
	}
	assert.Equal(t, ^uint64(0), o.load())
	assert.Equal(t, SlotCount, o.count())

	_, ok := o.claim()
	assert.False(t, ok, "full bitmap must not yield a slot")
}

func TestOccupancy_ReleaseMakesBitReusable(t *testing.T) {
	var o occupancy
	for i := 0; i < SlotCount; i++ {
		_, ok := o.claim()
		require.True(t, ok)
	}
	o.release(41)
	assert.Equal(t, SlotCount-1, o.count())

	got, ok := o.claim()
	require.True(t, ok)
	assert.Equal(t, 41, got)
}

func TestOccupancy_ConcurrentClaimsAreUnique(t *testing.T) {
	var o occupancy
	const workers = 256

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		owners = make(map[int]int)
		misses int
	)
	start := make(chan struct{})
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			<-start
			i, ok := o.claim()
			mu.Lock()
			defer mu.Unlock()
			if !ok {
				misses++
				return
			}
			if prev, dup := owners[i]; dup {
				t.Errorf("slot %d claimed by %d and %d", i, prev, w)
			}
			owners[i] = w
		}(w)
	}
	close(start)
	wg.Wait()

	assert.Len(t, owners, SlotCount)
	assert.Equal(t, workers-SlotCount, misses)
}

func TestOccupancy_ClaimReleaseChurnTerminates(t *testing.T) {
	var o occupancy
	var wg sync.WaitGroup
	for w := 0; w < 32; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 2000; n++ {
				if i, ok := o.claim(); ok {
					o.release(i)
				}
			}
		}()
	}
	wg.Wait()
	assert.Zero(t, o.load())
}
