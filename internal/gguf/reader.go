package gguf

import (
	"encoding/binary"
	"io"
)

// Reader wraps an io.ReadSeeker and provides GGUF-specific reading methods.
// All multi-byte values in a GGUF file are little-endian.
type Reader struct {
	r     io.ReadSeeker
	order binary.ByteOrder
}

// NewReader creates a new GGUF reader.
func NewReader(r io.ReadSeeker) *Reader {
	return &Reader{
		r:     r,
		order: binary.LittleEndian,
	}
}

// ReadUint32 reads a uint32 value.
func (r *Reader) ReadUint32() (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return 0, err
	}
	return r.order.Uint32(b[:]), nil
}

// ReadUint64 reads a uint64 value.
func (r *Reader) ReadUint64() (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return 0, err
	}
	return r.order.Uint64(b[:]), nil
}

// ReadValueType reads a metadata value type tag (4 bytes).
func (r *Reader) ReadValueType() (ValueType, error) {
	t, err := r.ReadUint32()
	return ValueType(t), err
}

// ReadKey reads a length-prefixed metadata key. Length fields above
// MaxKeyLength are rejected as corruption rather than allocated.
func (r *Reader) ReadKey() (string, error) {
	length, err := r.ReadUint64()
	if err != nil {
		return "", err
	}
	if length > MaxKeyLength {
		return "", ErrKeyTooLong
	}
	if length == 0 {
		return "", nil
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// Seek sets the offset for the next read.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	return r.r.Seek(offset, whence)
}

// ReadHeader reads and validates the GGUF header: the 4-byte magic, the
// format version, the tensor count, and the metadata KV count.
func (r *Reader) ReadHeader() (*Header, error) {
	var m [4]byte
	if _, err := io.ReadFull(r.r, m[:]); err != nil {
		return nil, err
	}
	if m != magic {
		return nil, ErrInvalidMagic
	}

	var header Header
	var err error
	if header.Version, err = r.ReadUint32(); err != nil {
		return nil, err
	}
	if header.TensorCount, err = r.ReadUint64(); err != nil {
		return nil, err
	}
	if header.MetadataKVCount, err = r.ReadUint64(); err != nil {
		return nil, err
	}
	return &header, nil
}
