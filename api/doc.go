// Package api
// Author: momentics <momentics@gmail.com>
//
// Contracts shared by the hioload-mempool packages: page allocators,
// object lifecycle hooks, metrics sinks, debug probes and errors.
package api
