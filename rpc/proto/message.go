package proto

// --------------------------------------------------------------------------
// Message capabilities
// --------------------------------------------------------------------------

// OpCode identifies an operation in the GridKV wire protocol
type OpCode uint16

const (
	// OpHandshake is the first exchange on a fresh connection
	OpHandshake OpCode = 1

	// Key-value operations

	OpKVGet    OpCode = 1000
	OpKVPut    OpCode = 1001
	OpKVDelete OpCode = 1002
)

// Request is the capability every outgoing message implements. The channel
// is agnostic to the payload schema, it only asks the request to serialize
// itself for the negotiated protocol version.
type Request interface {
	// OpCode returns the operation code of the request
	OpCode() OpCode
	// Serialize encodes the request payload for the given protocol version
	Serialize(ver Version) ([]byte, error)
}

// Response is the capability every reply message implements. It is
// populated from the raw payload of the matching reply.
type Response interface {
	// Deserialize decodes the response payload for the given protocol version
	Deserialize(ver Version, data []byte) error
}
