package common

import (
	"fmt"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds all configuration parameters for a single connection
// to a GridKV cluster member. One config describes exactly one channel -
// pooling and multi-endpoint routing live in the layer that owns multiple
// channels.
type ClientConfig struct {
	// Address of the cluster member (host:port for tcp, socket path for unix)
	Address string

	// ClientName is sent to the server during the handshake
	ClientName string

	// Timeouts
	ConnectTimeoutSecond   int
	HandshakeTimeoutSecond int
	RequestTimeoutSecond   int

	// TCP specific settings (ignored by other transports)
	TCPNoDelay         bool
	TCPKeepAliveSecond int
	WriteBufferKB      int
	ReadBufferKB       int

	// Logging configuration
	LogLevel string
}

// ConnectTimeout returns the connect timeout as a duration (0 = no timeout)
func (c *ClientConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSecond) * time.Second
}

// HandshakeTimeout returns the handshake timeout as a duration (0 = no timeout)
func (c *ClientConfig) HandshakeTimeout() time.Duration {
	return time.Duration(c.HandshakeTimeoutSecond) * time.Second
}

// RequestTimeout returns the request timeout as a duration (0 = no timeout)
func (c *ClientConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecond) * time.Second
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General client settings
	addSection("Client Configuration")
	addField("Address", c.Address)
	addField("Client Name", c.ClientName)
	addField("Connect Timeout", fmt.Sprintf("%d sec", c.ConnectTimeoutSecond))
	addField("Handshake Timeout", fmt.Sprintf("%d sec", c.HandshakeTimeoutSecond))
	addField("Request Timeout", fmt.Sprintf("%d sec", c.RequestTimeoutSecond))

	// Socket settings
	addSection("Socket Settings")
	addField("TCP No Delay", fmt.Sprintf("%t", c.TCPNoDelay))
	addField("TCP Keep Alive", fmt.Sprintf("%d sec", c.TCPKeepAliveSecond))
	addField("Write Buffer", fmt.Sprintf("%d KB", c.WriteBufferKB))
	addField("Read Buffer", fmt.Sprintf("%d KB", c.ReadBufferKB))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
