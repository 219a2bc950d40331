package gguf

import (
	"fmt"
	"math"
)

// ScanModelInfo performs a rich metadata scan of the GGUF file at path:
// canonical hyperparameter lookups plus heuristic mixture-of-experts
// detection. The error is non-nil only when the file could not be opened or
// the index capability is unavailable; individual fields being unknown is
// not an error and leaves them at zero.
func ScanModelInfo(path string) (*ModelInfo, error) {
	return ScanModelInfoWith(OpenIndex, path)
}

// ScanModelInfoWith is ScanModelInfo with an explicit capability opener,
// allowing builds without gguf-parser-go to supply UnavailableIndex.
func ScanModelInfoWith(open IndexOpener, path string) (*ModelInfo, error) {
	idx, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata index: %w", err)
	}
	defer idx.Close()

	info := &ModelInfo{}

	// Metadata keys are architecture-prefixed ("llama.expert_count",
	// "qwen3.block_count", ...). Try the file's own architecture first,
	// then the llama prefix, which older files use regardless of
	// architecture.
	arch := ""
	if v, ok := idx.Find("general.architecture"); ok && v.Type == TypeString {
		if s, ok := v.Value.(string); ok {
			arch = s
		}
	}
	keysFor := func(field string) []string {
		keys := make([]string, 0, 2)
		if arch != "" && arch != "llama" {
			keys = append(keys, arch+"."+field)
		}
		return append(keys, "llama."+field)
	}
	findPositive := func(keys []string) int32 {
		for _, k := range keys {
			v, ok := idx.Find(k)
			if !ok {
				continue
			}
			if n, ok := coerceInt(v); ok && n > 0 {
				return n
			}
		}
		return 0
	}

	// Canonical expert keys.
	if n := findPositive(keysFor("expert_count")); n > 0 {
		info.IsMoE = true
		info.ExpertCount = n
	}
	info.ExpertUsedCount = findPositive(keysFor("expert_used_count"))

	// Fuzzy fallback over every entry, for vendors that spell the expert
	// keys differently.
	if info.ExpertCount == 0 || info.ExpertUsedCount == 0 {
		var maxExperts, used int32
		for i := 0; i < idx.EntryCount(); i++ {
			name := idx.EntryName(i)
			switch {
			case isExpertCountKey(name):
				if v, ok := idx.Find(name); ok {
					if n, ok := coerceInt(v); ok && n > maxExperts {
						maxExperts = n
					}
				}
			case isExpertUsedCountKey(name) && used == 0:
				if v, ok := idx.Find(name); ok {
					if n, ok := coerceInt(v); ok && n > 0 {
						used = n
					}
				}
			}
		}
		if info.ExpertCount == 0 && maxExperts > 0 {
			info.ExpertCount = maxExperts
			info.IsMoE = true
		}
		if info.ExpertUsedCount == 0 {
			info.ExpertUsedCount = used
		}
	}

	info.LayerCount = findPositive(append(keysFor("block_count"), LayerCountKey))
	info.HiddenSize = findPositive(keysFor("embedding_length"))
	info.FeedForwardSize = findPositive(keysFor("feed_forward_length"))
	info.VocabSize = findPositive(keysFor("vocab_size"))

	// Tensor-name pass: infer the layer span from "blk.<i>." indices and
	// count routing tensors.
	maxIndex := -1
	gates := 0
	for i := 0; i < idx.TensorCount(); i++ {
		name := idx.TensorName(i)
		if bi, ok := blockIndex(name); ok && bi > maxIndex {
			maxIndex = bi
		}
		if isGateTensor(name) {
			gates++
		}
	}
	if info.LayerCount == 0 && maxIndex >= 0 {
		info.LayerCount = int32(maxIndex + 1)
	}
	info.MoELayerCount = int32(gates)
	if info.MoELayerCount > 0 {
		info.IsMoE = true
	}

	return info, nil
}

// coerceInt converts a metadata value to a 32-bit integer under a forgiving
// policy: integers narrow directly, booleans map to 0/1, floats round to
// nearest (non-finite values are absent), and arrays reduce to the maximum
// of their coercible elements. Hyperparameters are sometimes stored as
// single-element or redundant arrays; the max reduction absorbs that.
func coerceInt(v IndexedValue) (int32, bool) {
	if arr, ok := v.Value.(IndexedArray); ok {
		var best int32
		found := false
		for _, elem := range arr.Values {
			n, ok := coerceScalar(elem)
			if !ok {
				continue
			}
			if !found || n > best {
				best = n
			}
			found = true
		}
		return best, found
	}
	return coerceScalar(v.Value)
}

func coerceScalar(v any) (int32, bool) {
	switch x := v.(type) {
	case uint8:
		return int32(x), true
	case int8:
		return int32(x), true
	case uint16:
		return int32(x), true
	case int16:
		return int32(x), true
	case uint32:
		return int32(x), true
	case int32:
		return x, true
	case uint64:
		return int32(x), true
	case int64:
		return int32(x), true
	case int:
		return int32(x), true
	case uint:
		return int32(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case float32:
		return coerceFloat(float64(x))
	case float64:
		return coerceFloat(x)
	default:
		return 0, false
	}
}

func coerceFloat(f float64) (int32, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int32(math.Round(f)), true
}
