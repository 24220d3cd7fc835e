// File: pool/options.go
// Package pool defines functional options for the memory pool.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"github.com/momentics/hioload-mempool/api"
	"github.com/sirupsen/logrus"
)

// DefaultPageCapacity is the payload size of a page when none is configured.
const DefaultPageCapacity = 512

// Option customizes pool initialization.
type Option func(*Pool)

// WithPageCapacity sets the payload bytes of each slot page.
func WithPageCapacity(n int) Option {
	return func(p *Pool) {
		p.pageCapacity = n
	}
}

// WithAllocator replaces the heap page allocator.
func WithAllocator(a api.PageAllocator) Option {
	return func(p *Pool) {
		p.alloc = a
	}
}

// WithLogger routes pool diagnostics to l.
func WithLogger(l *logrus.Logger) Option {
	return func(p *Pool) {
		p.log = l.WithField("component", "mempool")
	}
}

// WithMetrics publishes pool stats into sink on PublishMetrics and Close.
func WithMetrics(sink api.MetricsSink) Option {
	return func(p *Pool) {
		p.metrics = sink
	}
}
