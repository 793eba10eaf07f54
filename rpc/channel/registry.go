package channel

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Notification registry
// --------------------------------------------------------------------------

// NotificationHandler is invoked with the raw message buffer (frame header
// included) each time a notification for its id is delivered. Unlike a
// pending call, a handler may fire zero or more times.
type NotificationHandler func(buf []byte)

// notificationRegistry is the concurrent table of registered notification
// handlers, keyed by the server-assigned notification id. It is guarded
// independently of the pending-call table so notification dispatch never
// contends with request correlation.
type notificationRegistry struct {
	handlers *xsync.MapOf[int64, NotificationHandler]
}

// newNotificationRegistry creates an empty registry
func newNotificationRegistry() *notificationRegistry {
	return &notificationRegistry{
		handlers: xsync.NewMapOf[int64, NotificationHandler](),
	}
}

// register stores a handler for the given notification id, replacing any
// previous handler
func (r *notificationRegistry) register(id int64, handler NotificationHandler) {
	r.handlers.Store(id, handler)
}

// unregister removes the handler for the given notification id
func (r *notificationRegistry) unregister(id int64) {
	r.handlers.Delete(id)
}

// dispatch invokes the handler registered for the given id with the buffer.
// The entry is retained. Returns false if no handler is registered.
func (r *notificationRegistry) dispatch(id int64, buf []byte) bool {
	handler, ok := r.handlers.Load(id)
	if !ok {
		return false
	}
	handler(buf)
	return true
}

// clear discards all registered handlers without notifying them
func (r *notificationRegistry) clear() {
	r.handlers.Clear()
}
