// Package channel implements the connection-level protocol engine of the
// GridKV client: one DataChannel per established connection to a cluster
// member. The channel negotiates a mutually supported protocol version,
// frames outgoing requests with fresh correlation ids, matches out-of-order
// replies back to their waiters, routes server-initiated notifications to
// registered handlers, and fails every outstanding waiter on disconnect.
//
// Key Components:
//
//   - DataChannel: the orchestrating type. StartHandshake gates all
//     application traffic, SyncMessage/AsyncMessage submit requests,
//     ProcessMessage is the inbound entry point fed by the transport.
//
//   - Future: single-assignment result slot returned by AsyncMessage.
//     Resolves exactly once, with the raw reply buffer or an error.
//
//   - NotificationHandler: persistent per-id callback for server pushes,
//     unlike a pending call it may fire repeatedly.
//
// Concurrency:
//
// Multiple goroutines may send concurrently while the transport goroutine
// delivers inbound buffers. The pending-call table and the notification
// registry are two independent concurrent maps, so notification dispatch
// never blocks request correlation. Remove-and-complete of a pending entry
// is atomic, a reply racing a timeout cannot be delivered twice. Request
// ids are strictly increasing per channel but replies may complete in any
// order, correlation by id is mandatory.
//
// The channel performs no reconnection and no retries. Connection-level
// failures are broadcast to every pending caller and the channel becomes
// unusable, failover across channels is the responsibility of the owning
// layer.
package channel
