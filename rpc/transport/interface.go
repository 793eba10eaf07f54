package transport

import (
	"github.com/gridkv/gridkv-go/rpc/common"
)

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IMessageSink receives inbound traffic and lifecycle events from a
// transport. It is implemented by the data channel.
type IMessageSink interface {
	// OnData is invoked by the transport for every complete framed message,
	// the buffer includes the 12 byte frame header
	OnData(buf []byte)
	// OnDisconnect is invoked at most once when the connection is lost.
	// It is not invoked for a local Close.
	OnDisconnect(err error)
}

// IConnectionTransport is the interface for a single-connection client
// transport. The transport does not reconnect on failure, it reports the
// failure to the sink and becomes unusable.
type IConnectionTransport interface {
	// Connect establishes the connection described by the configuration and
	// starts delivering inbound messages to the sink
	Connect(config common.ClientConfig, sink IMessageSink) error
	// Send writes one framed message to the connection
	Send(data []byte) error
	// Close closes the transport connection
	Close() error
}
