package channel

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Pending-call table
// --------------------------------------------------------------------------

// pendingCalls is the concurrent table of in-flight requests, keyed by
// correlation id. Removal and resolution of an entry happen atomically via
// LoadAndDelete, so a reply completion can never race a timeout-driven
// removal into a double delivery.
type pendingCalls struct {
	calls *xsync.MapOf[int64, *Future]
}

// newPendingCalls creates an empty pending-call table
func newPendingCalls() *pendingCalls {
	return &pendingCalls{
		calls: xsync.NewMapOf[int64, *Future](),
	}
}

// add registers a future under the given correlation id
func (p *pendingCalls) add(id int64, f *Future) {
	p.calls.Store(id, f)
}

// remove atomically removes and returns the entry for the given id, or nil
// if no entry exists (already completed, timed out or never registered)
func (p *pendingCalls) remove(id int64) *Future {
	f, ok := p.calls.LoadAndDelete(id)
	if !ok {
		return nil
	}
	return f
}

// complete atomically removes the entry for the given id and resolves it
// with the reply buffer. Returns false if no entry exists.
func (p *pendingCalls) complete(id int64, buf []byte) bool {
	f := p.remove(id)
	if f == nil {
		return false
	}
	f.complete(buf)
	return true
}

// failAll drains the table and fails every entry with the given error.
// Returns the number of failed entries.
func (p *pendingCalls) failAll(err error) int {
	n := 0
	p.calls.Range(func(id int64, _ *Future) bool {
		if f := p.remove(id); f != nil {
			f.fail(err)
			n++
		}
		return true
	})
	return n
}

// size returns the number of in-flight requests
func (p *pendingCalls) size() int {
	return p.calls.Size()
}
