// File: pool/handle.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Typed allocation entry points and the owning handle they return.

package pool

import (
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"github.com/momentics/hioload-mempool/api"
	"github.com/pkg/errors"
)

const (
	handleLive uint32 = iota
	handleReleased
)

// Handle owns one pooled *T. It is released exactly once, through Release
// or Deallocate; the pointer returned by Value must not be used afterwards.
type Handle[T any] struct {
	pool  *Pool
	ptr   *T
	page  *page
	state atomic.Uint32
}

// Value returns the pooled object, or nil once the handle is released or
// its slot page was freed by Close.
func (h *Handle[T]) Value() *T {
	if h == nil || h.state.Load() != handleLive {
		return nil
	}
	if !h.page.tag.IsOverflow() && h.pool.closed.Load() {
		return nil
	}
	return h.ptr
}

// Tag reports which slot owns the object, or OverflowTag.
func (h *Handle[T]) Tag() Tag { return h.page.tag }

// Overflow reports whether the object lives outside the slot directory.
func (h *Handle[T]) Overflow() bool { return h.page.tag.IsOverflow() }

// Release destroys the object and returns its memory to the pool.
// A slot handle released after Close is marked released without running
// Destroy, since its page is gone, and reports api.ErrPoolClosed.
func (h *Handle[T]) Release() error {
	if h == nil {
		return errors.Wrap(api.ErrInvalidArgument, "release nil handle")
	}
	if !h.state.CompareAndSwap(handleLive, handleReleased) {
		return api.NewError(api.ErrCodeContractViolation, "release").
			WithContext("tag", h.page.tag).
			WithCause(api.ErrDoubleFree)
	}
	ptr := h.ptr
	h.ptr = nil
	if !h.page.tag.IsOverflow() && h.pool.closed.Load() {
		return errClosed("release").WithContext("tag", h.page.tag)
	}
	if d, ok := any(ptr).(api.Destroyer); ok {
		d.Destroy()
	}
	return h.pool.free(h.page)
}

// Allocate copies v into pooled memory and returns its handle. Use it the
// way a constructor call is used: Allocate(p, Point{X: 3, Y: 4}).
func Allocate[T any](p *Pool, v T) (*Handle[T], error) {
	return AllocateFunc(p, func(dst *T) error {
		*dst = v
		return nil
	})
}

// AllocateFunc zeroes a pooled *T and runs init on it in place. When init
// fails the memory goes straight back to the pool and the error is returned.
func AllocateFunc[T any](p *Pool, init func(*T) error) (*Handle[T], error) {
	l := layoutOf[T]()
	if err := checkLayout[T](l); err != nil {
		return nil, err
	}
	pg, err := p.acquire(l)
	if err != nil {
		return nil, err
	}
	ptr := place[T](pg.mem)
	var zero T
	*ptr = zero
	if init != nil {
		if err := init(ptr); err != nil {
			err = errors.Wrap(err, "init pooled object")
			if rerr := p.recycle(pg); rerr != nil {
				return nil, multierror.Append(err, rerr)
			}
			return nil, err
		}
	}
	if pg.tag.IsOverflow() {
		p.overflowAllocs.Add(1)
	} else {
		p.slotAllocs.Add(1)
	}
	return &Handle[T]{pool: p, ptr: ptr, page: pg}, nil
}

// MustAllocate is Allocate for callers that treat allocation failure as fatal.
func MustAllocate[T any](p *Pool, v T) *Handle[T] {
	h, err := Allocate(p, v)
	if err != nil {
		panic(err)
	}
	return h
}

// Deallocate releases h back to p. It fails with api.ErrForeignHandle when h
// was issued by another pool and with api.ErrDoubleFree on a second call.
func Deallocate[T any](p *Pool, h *Handle[T]) error {
	if h == nil {
		return errors.Wrap(api.ErrInvalidArgument, "deallocate nil handle")
	}
	if h.pool != p {
		return api.NewError(api.ErrCodeContractViolation, "deallocate").
			WithContext("tag", h.page.tag).
			WithCause(api.ErrForeignHandle)
	}
	return h.Release()
}

// free recycles pg and updates the release counters.
func (p *Pool) free(pg *page) error {
	if err := p.recycle(pg); err != nil {
		return err
	}
	if pg.tag.IsOverflow() {
		p.overflowFrees.Add(1)
	} else {
		p.slotFrees.Add(1)
	}
	return nil
}
