package proto

import (
	"encoding/binary"
	"fmt"
)

// --------------------------------------------------------------------------
// Wire framing
// --------------------------------------------------------------------------

// Every message on the wire is framed as:
// - 4 bytes: content length (uint32, big endian), covers id + payload
// - 8 bytes: request/correlation id (int64, big endian)
// - N bytes: version-specific payload
//
// Handshake messages use the same framing with correlation id 0, they are
// matched to the in-flight handshake positionally instead of via the
// pending-call table.

const (
	// HeaderSize is the size of the frame header (4 byte length + 8 byte id)
	HeaderSize = 12

	// reqIDSize is the size of the correlation id inside the length-counted
	// part of the frame
	reqIDSize = 8
)

// NewFrame builds a complete framed message for the given correlation id
// and payload
func NewFrame(reqID int64, payload []byte) []byte {
	buf := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(reqIDSize+len(payload)))
	binary.BigEndian.PutUint64(buf[4:12], uint64(reqID))
	copy(buf[HeaderSize:], payload)
	return buf
}

// ParseHeader reads the frame header of a complete inbound message and
// returns the correlation id and the payload. The payload is a sub-slice of
// buf, no copy is made.
func ParseHeader(buf []byte) (reqID int64, payload []byte, err error) {
	if len(buf) < HeaderSize {
		return 0, nil, fmt.Errorf("message too short for frame header: %d bytes", len(buf))
	}

	length := binary.BigEndian.Uint32(buf[0:4])
	if int(length) < reqIDSize {
		return 0, nil, fmt.Errorf("invalid frame length %d", length)
	}
	if int(length)-reqIDSize > len(buf)-HeaderSize {
		return 0, nil, fmt.Errorf("frame length %d exceeds buffer size %d", length, len(buf))
	}

	reqID = int64(binary.BigEndian.Uint64(buf[4:12]))
	payload = buf[HeaderSize : HeaderSize+int(length)-reqIDSize]
	return reqID, payload, nil
}
