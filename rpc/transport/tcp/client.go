package tcp

import (
	"net"
	"time"

	"github.com/gridkv/gridkv-go/rpc/common"
	"github.com/gridkv/gridkv-go/rpc/transport"
	"github.com/gridkv/gridkv-go/rpc/transport/base"
)

// clientConnector implements the IClientConnector interface for TCP sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "tcp"
}

func (c *clientConnector) Connect(address string, config common.ClientConfig) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", address, config.ConnectTimeout())
	if err != nil {
		return nil, err
	}

	// Apply TCP specific socket options
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(config.TCPNoDelay); err != nil {
			conn.Close()
			return nil, err
		}
		if config.TCPKeepAliveSecond > 0 {
			if err := tcpConn.SetKeepAlive(true); err != nil {
				conn.Close()
				return nil, err
			}
			if err := tcpConn.SetKeepAlivePeriod(time.Duration(config.TCPKeepAliveSecond) * time.Second); err != nil {
				conn.Close()
				return nil, err
			}
		}
		if config.WriteBufferKB > 0 {
			if err := tcpConn.SetWriteBuffer(config.WriteBufferKB * 1024); err != nil {
				conn.Close()
				return nil, err
			}
		}
		if config.ReadBufferKB > 0 {
			if err := tcpConn.SetReadBuffer(config.ReadBufferKB * 1024); err != nil {
				conn.Close()
				return nil, err
			}
		}
	}

	return conn, nil
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewTCPClientTransport creates a new TCP client transport
func NewTCPClientTransport() transport.IConnectionTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}
