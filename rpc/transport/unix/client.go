package unix

import (
	"net"

	"github.com/gridkv/gridkv-go/rpc/common"
	"github.com/gridkv/gridkv-go/rpc/transport"
	"github.com/gridkv/gridkv-go/rpc/transport/base"
)

// clientConnector implements the IClientConnector interface for Unix sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "unix"
}

func (c *clientConnector) Connect(address string, config common.ClientConfig) (net.Conn, error) {
	return net.DialTimeout("unix", address, config.ConnectTimeout())
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewUnixClientTransport creates a new Unix socket client transport
func NewUnixClientTransport() transport.IConnectionTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}
