// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, runtime metrics and debug introspection for hioload-mempool.
//
// Provides concurrent-safe state handling primitives including:
//   - Environment-driven pool configuration (PoolConfig)
//   - Key/value config snapshots with reload listeners
//   - A metrics registry with bounded snapshot history
//   - Debug probe registration and state export
package control
