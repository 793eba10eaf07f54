package channel

import (
	"sync"
	"time"

	"github.com/gridkv/gridkv-go/rpc/common"
)

// --------------------------------------------------------------------------
// Future
// --------------------------------------------------------------------------

// Future is a single-assignment result slot for a raw reply buffer. It is
// resolved exactly once, either with the buffer of the matching reply or
// with the terminating error. The first writer wins, later resolution
// attempts are no-ops.
type Future struct {
	reqID int64
	once  sync.Once
	done  chan struct{}
	data  []byte
	err   error
}

// newFuture creates an unresolved future for the given request id
func newFuture(reqID int64) *Future {
	return &Future{
		reqID: reqID,
		done:  make(chan struct{}),
	}
}

// complete resolves the future with a reply buffer
func (f *Future) complete(data []byte) {
	f.once.Do(func() {
		f.data = data
		close(f.done)
	})
}

// fail resolves the future with an error
func (f *Future) fail(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// RequestID returns the correlation id of the request this future belongs
// to. Handshake futures use id 0.
func (f *Future) RequestID() int64 {
	return f.reqID
}

// Done returns a channel that is closed once the future is resolved
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result blocks until the future is resolved and returns the raw reply
// buffer or the terminating error
func (f *Future) Result() ([]byte, error) {
	<-f.done
	return f.data, f.err
}

// Wait blocks until the future is resolved or the timeout elapses. A
// timeout of 0 waits indefinitely. Note that a timeout here does not
// resolve the future, callers owning a pending-call entry must remove and
// fail it themselves (see DataChannel.SyncMessage).
func (f *Future) Wait(timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		return f.Result()
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.data, f.err
	case <-timer.C:
		return nil, common.ErrTimeout
	}
}
