package channel

import (
	"fmt"

	"github.com/gridkv/gridkv-go/rpc/proto"
)

// --------------------------------------------------------------------------
// Remote node identity
// --------------------------------------------------------------------------

// Node describes the remote cluster member a channel is connected to. It is
// learned during the handshake, written once and immutable afterwards.
type Node struct {
	id      string
	address string
	version proto.Version
}

// ID returns the server-assigned identifier of the node
func (n *Node) ID() string {
	return n.id
}

// Address returns the address the channel connected to
func (n *Node) Address() string {
	return n.address
}

// Version returns the protocol version negotiated with the node
func (n *Node) Version() proto.Version {
	return n.version
}

// String returns a human readable representation of the node
func (n *Node) String() string {
	return fmt.Sprintf("%s (%s, protocol %s)", n.id, n.address, n.version)
}
