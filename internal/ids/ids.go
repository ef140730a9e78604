// Package ids provides the monotonic node-identifier source shared by every
// rewriter in the lowering pipeline. Grounded on the teacher's habit of
// giving every mutable subsystem its own small, explicitly-constructed
// state struct (internal/semantic.SymbolTable, internal/types.TypeSystem)
// rather than reaching for package-level globals.
package ids

import "sync/atomic"

// Provider hands out fresh, monotonically increasing node IDs.
//
// A single Provider is shared by all passes in one compilation so that IDs
// stay unique across the whole unit; it is safe for concurrent use even
// though the pipeline itself runs single-threaded (spec §5), since nothing
// about a monotonic counter requires otherwise.
type Provider struct {
	next uint64
}

// New creates a Provider whose first call to Next returns 1. Zero is
// reserved so that a zero-value ID can mean "unset" in synthesized nodes
// that have not yet been assigned one.
func New() *Provider {
	return &Provider{next: 0}
}

// Next returns the next fresh ID.
func (p *Provider) Next() uint64 {
	return atomic.AddUint64(&p.next, 1)
}

// Peek returns the ID that the next call to Next will return, without
// consuming it. Useful in tests that assert on exact synthesized IDs.
func (p *Provider) Peek() uint64 {
	return atomic.LoadUint64(&p.next) + 1
}
