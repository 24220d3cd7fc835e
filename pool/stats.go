// File: pool/stats.go
// Author: momentics <momentics@gmail.com>
//
// Accounting snapshot, metrics publication and debug probes.

package pool

import (
	"fmt"

	"github.com/momentics/hioload-mempool/api"
)

// Stats returns a point-in-time view of the pool. Counters are read
// independently, so the snapshot is not atomic as a whole.
func (p *Pool) Stats() api.PoolStats {
	materialized := 0
	for i := range p.slots {
		if p.slots[i].Load() != nil {
			materialized++
		}
	}
	return api.PoolStats{
		PageCapacity:   p.pageCapacity,
		Occupied:       p.occ.count(),
		Materialized:   materialized,
		SlotAllocs:     p.slotAllocs.Load(),
		SlotFrees:      p.slotFrees.Load(),
		OverflowAllocs: p.overflowAllocs.Load(),
		OverflowFrees:  p.overflowFrees.Load(),
		Fallbacks:      p.fallbacks.Load(),
	}
}

// PublishMetrics pushes the current stats to the sink set with WithMetrics.
func (p *Pool) PublishMetrics() {
	if p.metrics == nil {
		return
	}
	s := p.Stats()
	p.metrics.Set("mempool.page_capacity", s.PageCapacity)
	p.metrics.Set("mempool.occupied", s.Occupied)
	p.metrics.Set("mempool.materialized", s.Materialized)
	p.metrics.Set("mempool.slot_allocs", s.SlotAllocs)
	p.metrics.Set("mempool.slot_frees", s.SlotFrees)
	p.metrics.Set("mempool.overflow_allocs", s.OverflowAllocs)
	p.metrics.Set("mempool.overflow_frees", s.OverflowFrees)
	p.metrics.Set("mempool.fallbacks", s.Fallbacks)
}

// RegisterProbes exposes the pool through a debug registry.
func (p *Pool) RegisterProbes(d api.Debug) {
	d.RegisterProbe("mempool.stats", func() any { return p.Stats() })
	d.RegisterProbe("mempool.occupancy", func() any {
		return fmt.Sprintf("%064b", p.Occupancy())
	})
}
