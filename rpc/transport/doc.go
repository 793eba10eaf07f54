// Package transport defines the interfaces and abstractions for the
// connection between the GridKV client and a single cluster member. It
// provides a common contract that all transport implementations must
// fulfill, enabling protocol-agnostic communication.
//
// The package focuses on:
//   - Defining a clear boundary between the data channel and the socket:
//     the channel sends framed bytes, the transport delivers complete
//     inbound buffers and a single disconnect event
//   - Enabling multiple transport implementations (TCP, Unix sockets)
//
// Key Components:
//
//   - IConnectionTransport: Interface for client-side transport
//     implementations that handle connection establishment and sending.
//
//   - IMessageSink: Callback interface for inbound messages and connection
//     loss, implemented by the data channel.
package transport
