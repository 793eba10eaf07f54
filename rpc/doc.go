// Package rpc provides the wire-level communication stack of the GridKV Go
// client. It owns everything between the typed client API and the socket:
// protocol version negotiation, message framing and correlation, and
// server-push notification routing.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the client,
//     including the connection configuration, error values, and logging.
//
//   - proto: The wire protocol itself, protocol versions, frame layout,
//     binary payload encoding, and the handshake messages.
//
//   - channel: The connection protocol engine. One DataChannel per
//     connection, correlating out-of-order replies to waiters and
//     dispatching notifications.
//
//   - transport: Socket abstractions with pluggable implementations
//     (TCP, Unix sockets).
//
//   - client: The typed key-value client built on a single channel.
package rpc
