// File: pool/pool.go
// Package pool implements a fixed-capacity, lock-free object pool.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"io"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"github.com/momentics/hioload-mempool/api"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// noCopy makes go vet's copylocks check reject copies of Pool.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Pool hands out typed objects from up to SlotCount lazily materialized
// pages. Objects that do not fit a page, or that arrive while every slot is
// busy, get a dedicated overflow page instead.
//
// A Pool must not be copied after first use.
type Pool struct {
	_ noCopy

	occ   occupancy
	slots [SlotCount]atomic.Pointer[page]

	pageCapacity int
	alloc        api.PageAllocator
	log          *logrus.Entry
	metrics      api.MetricsSink
	closed       atomic.Bool

	slotAllocs     atomic.Uint64
	slotFrees      atomic.Uint64
	overflowAllocs atomic.Uint64
	overflowFrees  atomic.Uint64
	fallbacks      atomic.Uint64
}

// New creates an empty pool. Pages are not allocated until first use.
func New(opts ...Option) (*Pool, error) {
	p := &Pool{
		pageCapacity: DefaultPageCapacity,
		alloc:        NewHeapAllocator(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.pageCapacity <= 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "page capacity must be positive").
			WithContext("page_capacity", p.pageCapacity).
			WithCause(api.ErrInvalidArgument)
	}
	if p.alloc == nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "nil page allocator").
			WithCause(api.ErrInvalidArgument)
	}
	if p.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		p.log = l.WithField("component", "mempool")
	}
	p.log.WithFields(logrus.Fields{
		"page_capacity": p.pageCapacity,
		"allocator":     p.alloc.Name(),
	}).Debug("memory pool created")
	return p, nil
}

// PageCapacity returns the payload size of a slot page.
func (p *Pool) PageCapacity() int { return p.pageCapacity }

// Occupancy returns a snapshot of the slot bitmap.
func (p *Pool) Occupancy() uint64 { return p.occ.load() }

// claimSlot wins a slot bit and makes sure its page exists.
// ok is false when every slot was observed busy.
func (p *Pool) claimSlot() (pg *page, ok bool, err error) {
	i, ok := p.occ.claim()
	if !ok {
		return nil, false, nil
	}
	pg = p.slots[i].Load()
	if pg != nil {
		return pg, true, nil
	}
	mem, err := p.alloc.Alloc(p.pageCapacity, pageAlign)
	if err != nil {
		p.occ.release(i)
		return nil, true, api.NewError(api.ErrCodeOutOfMemory, "materialize slot page").
			WithContext("slot", i).
			WithContext("allocator", p.alloc.Name()).
			WithCause(err)
	}
	pg = &page{mem: mem, tag: Tag(i)}
	p.slots[i].Store(pg)
	p.log.WithFields(logrus.Fields{"slot": i, "bytes": len(mem)}).Debug("page materialized")
	return pg, true, nil
}

// overflowPage allocates a dedicated page for one object.
func (p *Pool) overflowPage(l layout, reason string) (*page, error) {
	size := l.size
	if size == 0 {
		size = 1
	}
	mem, err := p.alloc.Alloc(size, l.align)
	if err != nil {
		return nil, api.NewError(api.ErrCodeOutOfMemory, "allocate overflow page").
			WithContext("bytes", size).
			WithContext("allocator", p.alloc.Name()).
			WithCause(err)
	}
	if p.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		p.log.WithFields(logrus.Fields{"bytes": size, "reason": reason}).Debug("overflow allocation")
	}
	return &page{mem: mem, tag: OverflowTag}, nil
}

func errClosed(op string) *api.Error {
	return api.NewError(api.ErrCodeClosed, op).WithCause(api.ErrPoolClosed)
}

// acquire resolves a page for an object of layout l.
func (p *Pool) acquire(l layout) (*page, error) {
	if p.closed.Load() {
		return nil, errClosed("allocate")
	}
	if l.size > p.pageCapacity {
		return p.overflowPage(l, "oversize")
	}
	if l.align > pageAlign {
		return p.overflowPage(l, "alignment")
	}
	pg, ok, err := p.claimSlot()
	if err != nil {
		return nil, err
	}
	if !ok {
		p.fallbacks.Add(1)
		return p.overflowPage(l, "directory_full")
	}
	return pg, nil
}

// recycle returns pg to where it came from: the allocator for overflow
// pages, the directory for slot pages.
func (p *Pool) recycle(pg *page) error {
	if pg.tag.IsOverflow() {
		if err := p.alloc.Free(pg.mem); err != nil {
			return errors.Wrap(err, "free overflow page")
		}
		return nil
	}
	p.occ.release(int(pg.tag))
	return nil
}

// Close frees every materialized slot page. Objects still living in slots
// are not destroyed and their handles must not be used afterwards; overflow
// pages are untouched and stay valid until released.
func (p *Pool) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return errClosed("close")
	}
	var result *multierror.Error
	freed := 0
	for i := range p.slots {
		pg := p.slots[i].Swap(nil)
		if pg == nil {
			continue
		}
		if err := p.alloc.Free(pg.mem); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "free slot %d", i))
			continue
		}
		freed++
	}
	p.log.WithFields(logrus.Fields{
		"pages_freed": freed,
		"live_slots":  p.occ.count(),
	}).Debug("memory pool closed")
	p.PublishMetrics()
	return result.ErrorOrNil()
}
