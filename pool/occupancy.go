// File: pool/occupancy.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Lock-free 64-bit occupancy bitmap for the slot directory.

package pool

import (
	"math/bits"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// SlotCount is the fixed number of page slots tracked by one pool.
const SlotCount = 64

// occupancy is the slot bitmap: bit i set means slot i holds a live object.
// The word sits on its own cache line; every goroutine hammering the pool
// touches it, nothing else should share the line.
type occupancy struct {
	_    cpu.CacheLinePad
	bits atomic.Uint64
	_    cpu.CacheLinePad
}

// claim scans bits 0..63 once and sets the first bit it wins with CAS.
// A lost CAS reloads the mask and retries the same bit while it is still
// clear; the total number of such retries per pass is capped at SlotCount,
// after which a lost bit is skipped. Returns false when the pass ends with
// no bit won.
func (o *occupancy) claim() (int, bool) {
	mask := o.bits.Load()
	retries := 0
	for i := 0; i < SlotCount; {
		bit := uint64(1) << i
		if mask&bit == 0 {
			if o.bits.CompareAndSwap(mask, mask|bit) {
				return i, true
			}
			mask = o.bits.Load()
			if mask&bit == 0 && retries < SlotCount {
				retries++
				continue
			}
		}
		i++
	}
	return -1, false
}

// release clears bit i. It is the publication point for the next claimer.
func (o *occupancy) release(i int) {
	o.bits.And(^(uint64(1) << i))
}

func (o *occupancy) load() uint64 { return o.bits.Load() }

func (o *occupancy) count() int { return bits.OnesCount64(o.bits.Load()) }
