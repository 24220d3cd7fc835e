// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines abstract pooling APIs: raw page allocators and object lifecycle hooks.

package api

// PageAllocator is the raw memory source behind a memory pool.
// Returned regions must not be scanned or moved by the garbage collector
// for the lifetime of the allocation, and must be at least align-aligned.
type PageAllocator interface {
	// Alloc returns a zeroed region of exactly size bytes.
	Alloc(size, align int) ([]byte, error)

	// Free releases a region previously returned by Alloc.
	Free(page []byte) error

	// Name identifies the backend in logs and metrics.
	Name() string
}

// Destroyer is implemented by pooled objects that need cleanup before
// their memory is handed back to the pool.
type Destroyer interface {
	Destroy()
}

// MetricsSink receives flattened metric values.
type MetricsSink interface {
	Set(key string, value any)
}

// PoolStats aggregates slot and overflow accounting of a memory pool.
type PoolStats struct {
	PageCapacity   int
	Occupied       int
	Materialized   int
	SlotAllocs     uint64
	SlotFrees      uint64
	OverflowAllocs uint64
	OverflowFrees  uint64
	Fallbacks      uint64
}
