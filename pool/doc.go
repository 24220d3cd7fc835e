// Package pool
// Author: momentics <momentics@gmail.com>
//
// Fixed-capacity, lock-free object pool for hioload-mempool.
//
// A Pool owns a directory of 64 page slots and a 64-bit occupancy word.
// Allocation claims a clear bit with compare-and-swap, materializes the
// slot's page on first use and constructs the object in place; release
// clears the bit and keeps the page for the next claimer. Objects larger
// than a page, or arriving while all slots are busy, get a dedicated
// overflow page that goes straight back to the page allocator on release.
//
// Pages are raw memory outside the garbage collector's view (Go heap byte
// arenas or anonymous mappings), so pooled types must be pointer-free:
// numbers, bools, arrays and structs of those.
//
//	p, _ := pool.New(pool.WithPageCapacity(256))
//	h, _ := pool.Allocate(p, Point{X: 3, Y: 4})
//	h.Value().X++
//	_ = h.Release()
//	_ = p.Close()
//
// See pool.go, handle.go and occupancy.go for implementation details.
package pool
