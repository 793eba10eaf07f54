// Package base provides the shared client transport implementation used by
// the concrete socket transports (TCP, Unix). It handles everything that is
// independent of the transport medium:
//
//   - Connection establishment via a pluggable IClientConnector
//   - Serialized frame writes from concurrent senders
//   - A single reader goroutine that reassembles complete framed messages
//     and delivers them to the message sink
//   - One-shot disconnect reporting (a local Close never produces a
//     disconnect event)
//
// The base transport performs no reconnection and no correlation, both are
// responsibilities of the data channel sitting on top of it.
package base
