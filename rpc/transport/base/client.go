package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/gridkv/gridkv-go/rpc/common"
	"github.com/gridkv/gridkv-go/rpc/proto"
	"github.com/gridkv/gridkv-go/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rpc/transport")

// maxMessageSize bounds the length prefix of inbound frames. Anything
// larger is treated as a corrupted stream.
const maxMessageSize = 64 << 20

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection
// operations
type IClientConnector interface {
	// Connect establishes a single connection based on the provided configuration
	Connect(address string, config common.ClientConfig) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
}

// -----------------------------------------------------------
// Transport implementation
// -----------------------------------------------------------

// connectionTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.)
type connectionTransport struct {
	connector IClientConnector
	config    common.ClientConfig
	sink      transport.IMessageSink
	conn      net.Conn
	writeMu   sync.Mutex // Serializes writes to the connection
	closed    atomic.Bool
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the
// specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IConnectionTransport {
	return &connectionTransport{
		connector: connector,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IConnectionTransport)
// --------------------------------------------------------------------------

func (t *connectionTransport) Connect(config common.ClientConfig, sink transport.IMessageSink) error {
	if config.Address == "" {
		return fmt.Errorf("no address provided")
	}
	if sink == nil {
		return fmt.Errorf("no message sink provided")
	}

	// Store config and sink
	t.config = config
	t.sink = sink

	// Establish the connection
	conn, err := t.connector.Connect(config.Address, config)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %v", config.Address, err)
	}
	t.conn = conn

	Logger.Infof("Connected to %s using %s transport", config.Address, t.connector.GetName())

	// Start the message reader
	go t.readMessages()

	return nil
}

func (t *connectionTransport) Send(data []byte) error {
	if t.closed.Load() {
		return common.ErrClosed
	}

	// Lock the connection only for writing
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := t.conn.Write(data); err != nil {
		return fmt.Errorf("failed to send message: %v", err)
	}
	return nil
}

func (t *connectionTransport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	if t.conn != nil {
		return t.conn.Close()
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// readMessages reads framed messages in a loop and delivers them to the sink.
// The first read error terminates the loop, a single OnDisconnect is
// reported unless the transport was closed locally.
func (t *connectionTransport) readMessages() {
	for {
		buf, err := readMessage(t.conn)
		if err != nil {
			if t.closed.Load() {
				// Local close, no disconnect event
				return
			}
			t.closed.Store(true)
			t.conn.Close()
			Logger.Warningf("Connection to %s lost: %v", t.config.Address, err)
			t.sink.OnDisconnect(err)
			return
		}

		t.sink.OnData(buf)
	}
}

// readMessage reads one complete framed message from the connection. The
// returned buffer contains the full frame including the header, so the
// correlation step can re-read the id without extra bookkeeping.
func readMessage(conn net.Conn) ([]byte, error) {
	// Read length prefix
	var lenBuf [4]byte
	if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(lenBuf[:])
	if length < proto.HeaderSize-4 {
		return nil, fmt.Errorf("invalid frame length %d", length)
	}
	if length > maxMessageSize {
		return nil, fmt.Errorf("frame length %d exceeds limit", length)
	}

	// Read id + payload, reassemble the full frame
	buf := make([]byte, 4+length)
	copy(buf[:4], lenBuf[:])
	if _, err := io.ReadFull(conn, buf[4:]); err != nil {
		return nil, err
	}

	return buf, nil
}
