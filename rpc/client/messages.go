package client

import (
	"fmt"

	"github.com/gridkv/gridkv-go/rpc/proto"
)

// --------------------------------------------------------------------------
// Response status envelope
// --------------------------------------------------------------------------

// StatusSuccess is the status code of a successful operation. Any other
// status carries an error message in the response payload.
const StatusSuccess uint16 = 0

// readStatus decodes the common response envelope (status code, on failure
// followed by an error message)
func readStatus(r *proto.Reader) (uint16, string, error) {
	status, err := r.ReadUint16()
	if err != nil {
		return 0, "", err
	}
	if status == StatusSuccess {
		return status, "", nil
	}
	msg, err := r.ReadString()
	if err != nil {
		return 0, "", err
	}
	return status, msg, nil
}

// --------------------------------------------------------------------------
// KV Get
// --------------------------------------------------------------------------

// KVGetRequest reads the value stored under a key
type KVGetRequest struct {
	Key string
}

func (r *KVGetRequest) OpCode() proto.OpCode {
	return proto.OpKVGet
}

func (r *KVGetRequest) Serialize(_ proto.Version) ([]byte, error) {
	w := proto.NewWriter()
	w.WriteUint16(uint16(proto.OpKVGet))
	w.WriteString(r.Key)
	return w.Bytes(), nil
}

// KVGetResponse carries the value stored under the requested key
type KVGetResponse struct {
	Status uint16
	Err    string
	Found  bool
	Value  []byte
}

func (r *KVGetResponse) Deserialize(_ proto.Version, data []byte) error {
	reader := proto.NewReader(data)

	status, msg, err := readStatus(reader)
	if err != nil {
		return fmt.Errorf("failed to decode get response: %v", err)
	}
	r.Status, r.Err = status, msg
	if status != StatusSuccess {
		return nil
	}

	if r.Found, err = reader.ReadBool(); err != nil {
		return fmt.Errorf("failed to decode get response: %v", err)
	}
	if r.Found {
		if r.Value, err = reader.ReadBytes(); err != nil {
			return fmt.Errorf("failed to decode get response: %v", err)
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// KV Put
// --------------------------------------------------------------------------

// KVPutRequest stores a value under a key. TTLSeconds is only transmitted
// from protocol version 1.6.0 on, older servers ignore expiration.
type KVPutRequest struct {
	Key        string
	Value      []byte
	TTLSeconds uint64
}

func (r *KVPutRequest) OpCode() proto.OpCode {
	return proto.OpKVPut
}

func (r *KVPutRequest) Serialize(ver proto.Version) ([]byte, error) {
	if r.TTLSeconds > 0 && ver.Compare(proto.V1_6_0) < 0 {
		return nil, fmt.Errorf("entry TTL requires protocol version %s or newer, negotiated %s",
			proto.V1_6_0, ver)
	}

	w := proto.NewWriter()
	w.WriteUint16(uint16(proto.OpKVPut))
	w.WriteString(r.Key)
	w.WriteBytes(r.Value)
	if ver.Compare(proto.V1_6_0) >= 0 {
		w.WriteUint64(r.TTLSeconds)
	}
	return w.Bytes(), nil
}

// KVPutResponse acknowledges a put
type KVPutResponse struct {
	Status uint16
	Err    string
}

func (r *KVPutResponse) Deserialize(_ proto.Version, data []byte) error {
	reader := proto.NewReader(data)

	status, msg, err := readStatus(reader)
	if err != nil {
		return fmt.Errorf("failed to decode put response: %v", err)
	}
	r.Status, r.Err = status, msg
	return nil
}

// --------------------------------------------------------------------------
// KV Delete
// --------------------------------------------------------------------------

// KVDeleteRequest removes the entry stored under a key
type KVDeleteRequest struct {
	Key string
}

func (r *KVDeleteRequest) OpCode() proto.OpCode {
	return proto.OpKVDelete
}

func (r *KVDeleteRequest) Serialize(_ proto.Version) ([]byte, error) {
	w := proto.NewWriter()
	w.WriteUint16(uint16(proto.OpKVDelete))
	w.WriteString(r.Key)
	return w.Bytes(), nil
}

// KVDeleteResponse acknowledges a delete
type KVDeleteResponse struct {
	Status uint16
	Err    string
}

func (r *KVDeleteResponse) Deserialize(_ proto.Version, data []byte) error {
	reader := proto.NewReader(data)

	status, msg, err := readStatus(reader)
	if err != nil {
		return fmt.Errorf("failed to decode delete response: %v", err)
	}
	r.Status, r.Err = status, msg
	return nil
}
