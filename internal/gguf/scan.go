package gguf

import (
	"fmt"
	"io"
	"math"
	"os"
)

// LayerCountKey is the metadata key the simple scan answers.
const LayerCountKey = "hparams.n_layer"

// Limits bounds a single forward scan against corrupt or hostile length
// fields.
type Limits struct {
	// MaxSkipBytes caps the cumulative number of bytes the scan may seek
	// past. Zero means DefaultMaxSkipBytes.
	MaxSkipBytes uint64
}

// DefaultLimits returns the scan limits used when none are supplied.
func DefaultLimits() Limits {
	return Limits{MaxSkipBytes: DefaultMaxSkipBytes}
}

// LayerCount reports the transformer layer count recorded under
// "hparams.n_layer", reading only as much of the file as necessary.
//
// A return of 0 means either "key absent" or "key present with value 0";
// callers cannot tell the two apart. This mirrors the historical scanner
// contract; use ScanInt when the distinction matters. Every failure mode
// (missing file, bad magic, truncation, corrupt length fields) also reports
// 0, never an error.
func LayerCount(path string) int32 {
	v, _, _ := ScanInt(path, LayerCountKey)
	return v
}

// ScanInt performs a single forward pass over the metadata section of the
// GGUF file at path, looking for key stored as a 32-bit integer. It returns
// the value and whether the key was found. Structural and I/O failures
// degrade to (0, false, err); the scan never panics on malformed input.
func ScanInt(path, key string) (int32, bool, error) {
	return ScanIntLimits(path, key, DefaultLimits())
}

// ScanIntLimits is ScanInt with explicit scan limits.
func ScanIntLimits(path, key string, limits Limits) (int32, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false, fmt.Errorf("failed to open GGUF file: %w", err)
	}
	defer f.Close()
	return scanKey(f, key, limits)
}

// ScanHeader reads only the fixed GGUF header of the file at path.
func ScanHeader(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open GGUF file: %w", err)
	}
	defer f.Close()
	return NewReader(f).ReadHeader()
}

// scanner walks the key-value section of a GGUF file, tracking how many
// bytes it has skipped so a hostile file cannot drive an unbounded walk.
type scanner struct {
	r       *Reader
	skipped uint64
	maxSkip uint64
}

// scanKey is the skip engine. It validates the header, then walks the
// key-value entries in order. An entry whose key matches and whose value is
// a 32-bit integer is returned immediately; every other entry is skipped by
// its declared size without being interpreted.
func scanKey(rs io.ReadSeeker, key string, limits Limits) (int32, bool, error) {
	maxSkip := limits.MaxSkipBytes
	if maxSkip == 0 {
		maxSkip = DefaultMaxSkipBytes
	}
	s := &scanner{r: NewReader(rs), maxSkip: maxSkip}

	header, err := s.r.ReadHeader()
	if err != nil {
		return 0, false, err
	}

	for i := uint64(0); i < header.MetadataKVCount; i++ {
		name, err := s.r.ReadKey()
		if err != nil {
			return 0, false, fmt.Errorf("failed to read metadata key at index %d: %w", i, err)
		}
		vt, err := s.r.ReadValueType()
		if err != nil {
			return 0, false, fmt.Errorf("failed to read value type for key %q: %w", name, err)
		}

		if name == key && (vt == TypeInt32 || vt == TypeUint32) {
			v, err := s.r.ReadUint32()
			if err != nil {
				return 0, false, fmt.Errorf("failed to read value for key %q: %w", name, err)
			}
			return int32(v), true, nil
		}

		if err := s.skipValue(vt); err != nil {
			return 0, false, fmt.Errorf("failed to skip value for key %q: %w", name, err)
		}
	}

	return 0, false, nil
}

// skipValue advances past one value of the given type without interpreting
// it. Unknown type tags abort the scan; guessing a width would desynchronize
// every entry after it.
func (s *scanner) skipValue(vt ValueType) error {
	if size, ok := vt.FixedSize(); ok {
		return s.skip(size)
	}

	switch vt {
	case TypeString:
		length, err := s.r.ReadUint64()
		if err != nil {
			return err
		}
		return s.skip(length)

	case TypeArray:
		elemType, err := s.r.ReadValueType()
		if err != nil {
			return err
		}
		count, err := s.r.ReadUint64()
		if err != nil {
			return err
		}
		if elemType == TypeString {
			for j := uint64(0); j < count; j++ {
				length, err := s.r.ReadUint64()
				if err != nil {
					return err
				}
				if err := s.skip(length); err != nil {
					return err
				}
			}
			return nil
		}
		// Nested arrays are not part of the format; FixedSize rejects
		// them along with unknown element tags.
		size, ok := elemType.FixedSize()
		if !ok {
			return ErrInvalidValueType
		}
		if count > math.MaxUint64/size {
			return ErrSkipOverflow
		}
		return s.skip(size * count)

	default:
		return ErrInvalidValueType
	}
}

// skip seeks forward n bytes, charging them against the scan's skip budget.
func (s *scanner) skip(n uint64) error {
	if n > s.maxSkip-s.skipped {
		return ErrSkipBudget
	}
	s.skipped += n
	if n > math.MaxInt64 {
		return ErrSkipOverflow
	}
	_, err := s.r.Seek(int64(n), io.SeekCurrent)
	return err
}
