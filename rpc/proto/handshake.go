package proto

import "fmt"

// --------------------------------------------------------------------------
// Handshake messages
// --------------------------------------------------------------------------

// ClientKindGo identifies the Go thin client during the handshake
const ClientKindGo uint8 = 2

// HandshakeRequest proposes a protocol version and identifies the client.
// It is the first framed message on a fresh connection and is sent before
// any version has been negotiated, its wire format is therefore fixed and
// independent of the version argument.
type HandshakeRequest struct {
	ProposedVersion Version
	ClientName      string
}

// OpCode implements the Request interface
func (r *HandshakeRequest) OpCode() OpCode {
	return OpHandshake
}

// Serialize implements the Request interface
func (r *HandshakeRequest) Serialize(_ Version) ([]byte, error) {
	w := NewWriter()
	w.WriteUint8(uint8(OpHandshake))
	w.WriteVersion(r.ProposedVersion)
	w.WriteUint8(ClientKindGo)
	w.WriteString(r.ClientName)
	return w.Bytes(), nil
}

// HandshakeResponse is the server reply to a handshake request. On
// acceptance it carries the identity of the remote node, on rejection it
// carries the version the server proposes instead and an error message.
type HandshakeResponse struct {
	Accepted bool

	// Set on acceptance
	NodeID string

	// Set on rejection
	ServerVersion Version
	Err           string
}

// Deserialize implements the Response interface
func (r *HandshakeResponse) Deserialize(_ Version, data []byte) error {
	reader := NewReader(data)

	accepted, err := reader.ReadBool()
	if err != nil {
		return fmt.Errorf("failed to decode handshake response: %v", err)
	}
	r.Accepted = accepted

	if accepted {
		nodeID, err := reader.ReadString()
		if err != nil {
			return fmt.Errorf("failed to decode handshake node id: %v", err)
		}
		r.NodeID = nodeID
		return nil
	}

	ver, err := reader.ReadVersion()
	if err != nil {
		return fmt.Errorf("failed to decode handshake counter-proposal: %v", err)
	}
	r.ServerVersion = ver

	msg, err := reader.ReadString()
	if err != nil {
		return fmt.Errorf("failed to decode handshake error message: %v", err)
	}
	r.Err = msg
	return nil
}
