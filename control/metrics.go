// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for system-level monitoring.
// Exposes counters in a thread-safe map with dynamic registration
// and keeps a bounded history of recorded snapshots.

package control

import (
	"sync"
	"time"

	"github.com/eapache/queue"
)

// DefaultHistoryDepth bounds the snapshot history when none is given.
const DefaultHistoryDepth = 32

// MetricsSnapshot is one recorded copy of the registry.
type MetricsSnapshot struct {
	At     time.Time
	Values map[string]any
}

// MetricsRegistry holds mutable and read-only metrics.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]any
	updated time.Time
	history *queue.Queue
	depth   int
}

// NewMetricsRegistry creates an empty registry with the default history depth.
func NewMetricsRegistry() *MetricsRegistry {
	return NewMetricsRegistryWithHistory(DefaultHistoryDepth)
}

// NewMetricsRegistryWithHistory creates an empty registry keeping at most
// depth snapshots; depth < 1 is treated as 1.
func NewMetricsRegistryWithHistory(depth int) *MetricsRegistry {
	if depth < 1 {
		depth = 1
	}
	return &MetricsRegistry{
		metrics: make(map[string]any),
		history: queue.New(),
		depth:   depth,
	}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// GetSnapshot returns the latest metrics.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.copyLocked()
}

// Updated returns the time of the last Set.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}

// Record appends the current values to the history, evicting the oldest
// snapshot once the depth is exceeded.
func (mr *MetricsRegistry) Record() {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.history.Add(MetricsSnapshot{At: time.Now(), Values: mr.copyLocked()})
	for mr.history.Length() > mr.depth {
		mr.history.Remove()
	}
}

// History returns recorded snapshots, oldest first.
func (mr *MetricsRegistry) History() []MetricsSnapshot {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make([]MetricsSnapshot, mr.history.Length())
	for i := range out {
		out[i] = mr.history.Get(i).(MetricsSnapshot)
	}
	return out
}

func (mr *MetricsRegistry) copyLocked() map[string]any {
	out := make(map[string]any, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	return out
}
