package proto

import (
	"encoding/binary"
	"fmt"
)

// --------------------------------------------------------------------------
// Binary payload encoding helpers
// --------------------------------------------------------------------------

// All multi-byte values are big endian. Strings and byte slices are
// length-prefixed with a uint32.

// Writer accumulates a binary payload
type Writer struct {
	buf []byte
}

// NewWriter creates a new payload writer
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

// Bytes returns the accumulated payload
func (w *Writer) Bytes() []byte {
	return w.buf
}

// WriteUint8 appends a single byte
func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteBool appends a boolean as a single byte (1 = true, 0 = false)
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// WriteUint16 appends a uint16
func (w *Writer) WriteUint16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

// WriteUint64 appends a uint64
func (w *Writer) WriteUint64(v uint64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, v)
}

// WriteInt64 appends an int64
func (w *Writer) WriteInt64(v int64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, uint64(v))
}

// WriteString appends a length-prefixed string
func (w *Writer) WriteString(v string) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(len(v)))
	w.buf = append(w.buf, v...)
}

// WriteBytes appends a length-prefixed byte slice
func (w *Writer) WriteBytes(v []byte) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(len(v)))
	w.buf = append(w.buf, v...)
}

// Reader consumes a binary payload
type Reader struct {
	buf []byte
	pos int
}

// NewReader creates a new payload reader over the given buffer
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the number of unread bytes
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// ReadUint8 reads a single byte
func (r *Reader) ReadUint8() (uint8, error) {
	if r.pos+1 > len(r.buf) {
		return 0, fmt.Errorf("data too short for uint8 at offset %d", r.pos)
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// ReadBool reads a boolean encoded as a single byte
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// ReadUint16 reads a uint16
func (r *Reader) ReadUint16() (uint16, error) {
	if r.pos+2 > len(r.buf) {
		return 0, fmt.Errorf("data too short for uint16 at offset %d", r.pos)
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos : r.pos+2])
	r.pos += 2
	return v, nil
}

// ReadUint64 reads a uint64
func (r *Reader) ReadUint64() (uint64, error) {
	if r.pos+8 > len(r.buf) {
		return 0, fmt.Errorf("data too short for uint64 at offset %d", r.pos)
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos : r.pos+8])
	r.pos += 8
	return v, nil
}

// ReadInt64 reads an int64
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadString reads a length-prefixed string
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadBytes reads a length-prefixed byte slice. The returned slice is a
// copy of the underlying buffer.
func (r *Reader) ReadBytes() ([]byte, error) {
	if r.pos+4 > len(r.buf) {
		return nil, fmt.Errorf("data too short for length prefix at offset %d", r.pos)
	}
	length := binary.BigEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4

	if r.pos+int(length) > len(r.buf) {
		return nil, fmt.Errorf("data too short for %d content bytes at offset %d", length, r.pos)
	}
	out := make([]byte, length)
	copy(out, r.buf[r.pos:r.pos+int(length)])
	r.pos += int(length)
	return out, nil
}

// ReadVersion reads a protocol version triple
func (r *Reader) ReadVersion() (Version, error) {
	major, err := r.ReadUint16()
	if err != nil {
		return Version{}, err
	}
	minor, err := r.ReadUint16()
	if err != nil {
		return Version{}, err
	}
	patch, err := r.ReadUint16()
	if err != nil {
		return Version{}, err
	}
	return Version{Major: major, Minor: minor, Patch: patch}, nil
}

// WriteVersion appends a protocol version triple
func (w *Writer) WriteVersion(v Version) {
	w.WriteUint16(v.Major)
	w.WriteUint16(v.Minor)
	w.WriteUint16(v.Patch)
}
