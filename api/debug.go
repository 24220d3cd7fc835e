// Package api
// Author: momentics
//
// Debug introspection contract; pools register probes describing their
// slot directory and accounting.

package api

// Debug exposes runtime introspection.
type Debug interface {
	// DumpState evaluates every probe and returns the results by name.
	DumpState() map[string]any

	// RegisterProbe registers or replaces a named probe.
	RegisterProbe(name string, fn func() any)
}
