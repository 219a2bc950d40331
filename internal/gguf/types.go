// Package gguf provides GGUF (GPT-Generated Unified Format) metadata scanning.
// GGUF is the binary container used by llama.cpp for storing LLM models.
//
// The package has two tiers. The skip engine (scan.go) is a dependency-free,
// forward-only parser that answers single-key integer queries by reading the
// header and key-value section, skipping everything else by declared size.
// The rich extractor (moescan.go) answers multi-key hyperparameter and
// mixture-of-experts queries through a MetadataIndex capability, backed by
// github.com/gpustack/gguf-parser-go.
package gguf

import "errors"

// GGUF file format constants.
const (
	// MaxKeyLength is the largest plausible metadata key, in bytes.
	// Longer length fields are treated as corruption.
	MaxKeyLength = 1024

	// DefaultMaxSkipBytes bounds the total number of bytes the skip engine
	// may advance past in a single scan. The format itself imposes no such
	// ceiling; this guards against hostile length fields.
	DefaultMaxSkipBytes = 4 << 30
)

// magic is the 4-byte signature at the start of every GGUF file.
var magic = [4]byte{'G', 'G', 'U', 'F'}

// ValueType is the GGUF metadata value type tag, stored on disk as a
// little-endian uint32.
type ValueType uint32

// GGUF value types as specified in the format.
const (
	TypeUint8   ValueType = 0
	TypeInt8    ValueType = 1
	TypeUint16  ValueType = 2
	TypeInt16   ValueType = 3
	TypeUint32  ValueType = 4
	TypeInt32   ValueType = 5
	TypeFloat32 ValueType = 6
	TypeBool    ValueType = 7
	TypeString  ValueType = 8
	TypeArray   ValueType = 9
	TypeUint64  ValueType = 10
	TypeInt64   ValueType = 11
	TypeFloat64 ValueType = 12
)

// String returns the type tag name.
func (vt ValueType) String() string {
	switch vt {
	case TypeUint8:
		return "uint8"
	case TypeInt8:
		return "int8"
	case TypeUint16:
		return "uint16"
	case TypeInt16:
		return "int16"
	case TypeUint32:
		return "uint32"
	case TypeInt32:
		return "int32"
	case TypeFloat32:
		return "float32"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeUint64:
		return "uint64"
	case TypeInt64:
		return "int64"
	case TypeFloat64:
		return "float64"
	default:
		return "unknown"
	}
}

// FixedSize returns the on-disk element width for fixed-width scalar tags.
// String and array values are variable-length and report ok=false, as does
// any tag outside the thirteen known types. Every known tag appears here
// explicitly so a newly introduced tag cannot silently skip zero bytes.
func (vt ValueType) FixedSize() (size uint64, ok bool) {
	switch vt {
	case TypeUint8, TypeInt8, TypeBool:
		return 1, true
	case TypeUint16, TypeInt16:
		return 2, true
	case TypeUint32, TypeInt32, TypeFloat32:
		return 4, true
	case TypeUint64, TypeInt64, TypeFloat64:
		return 8, true
	case TypeString, TypeArray:
		return 0, false
	default:
		return 0, false
	}
}

// Header represents the GGUF file header.
type Header struct {
	Version         uint32 // GGUF format version, informational only
	TensorCount     uint64 // number of tensors in the file
	MetadataKVCount uint64 // number of key-value pairs in the metadata
}

// Errors returned by the scanner. The public entry points collapse all of
// these to the fail-closed "not found" result; they surface individually
// only through the lower-level scan path and in tests.
var (
	ErrInvalidMagic     = errors.New("invalid GGUF magic number")
	ErrKeyTooLong       = errors.New("metadata key length exceeds maximum")
	ErrInvalidValueType = errors.New("invalid metadata value type")
	ErrSkipOverflow     = errors.New("array byte size overflows")
	ErrSkipBudget       = errors.New("cumulative skip budget exceeded")
	ErrUnavailable      = errors.New("metadata index capability unavailable")
)
