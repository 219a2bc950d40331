package gguf

import (
	"path/filepath"
	"testing"

	ggufparser "github.com/gpustack/gguf-parser-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The two type enumerations must share the GGUF on-disk numbering for the
// direct cast in toIndexedValue to hold.
func TestValueTypeNumberingMatchesLibrary(t *testing.T) {
	pairs := []struct {
		ours   ValueType
		theirs ggufparser.GGUFMetadataValueType
	}{
		{TypeUint8, ggufparser.GGUFMetadataValueTypeUint8},
		{TypeInt8, ggufparser.GGUFMetadataValueTypeInt8},
		{TypeUint16, ggufparser.GGUFMetadataValueTypeUint16},
		{TypeInt16, ggufparser.GGUFMetadataValueTypeInt16},
		{TypeUint32, ggufparser.GGUFMetadataValueTypeUint32},
		{TypeInt32, ggufparser.GGUFMetadataValueTypeInt32},
		{TypeFloat32, ggufparser.GGUFMetadataValueTypeFloat32},
		{TypeBool, ggufparser.GGUFMetadataValueTypeBool},
		{TypeString, ggufparser.GGUFMetadataValueTypeString},
		{TypeArray, ggufparser.GGUFMetadataValueTypeArray},
		{TypeUint64, ggufparser.GGUFMetadataValueTypeUint64},
		{TypeInt64, ggufparser.GGUFMetadataValueTypeInt64},
		{TypeFloat64, ggufparser.GGUFMetadataValueTypeFloat64},
	}
	for _, p := range pairs {
		assert.Equal(t, p.ours, ValueType(p.theirs))
	}
}

func TestToIndexedValue(t *testing.T) {
	t.Run("Scalar", func(t *testing.T) {
		kv := ggufparser.GGUFMetadataKV{
			Key:       "llama.expert_count",
			ValueType: ggufparser.GGUFMetadataValueTypeUint32,
			Value:     uint32(8),
		}
		v := toIndexedValue(kv)
		assert.Equal(t, TypeUint32, v.Type)
		assert.Equal(t, uint32(8), v.Value)
	})

	t.Run("String", func(t *testing.T) {
		kv := ggufparser.GGUFMetadataKV{
			Key:       "general.architecture",
			ValueType: ggufparser.GGUFMetadataValueTypeString,
			Value:     "llama",
		}
		v := toIndexedValue(kv)
		assert.Equal(t, TypeString, v.Type)
		assert.Equal(t, "llama", v.Value)
	})

	t.Run("Array", func(t *testing.T) {
		kv := ggufparser.GGUFMetadataKV{
			Key:       "hparams.n_experts",
			ValueType: ggufparser.GGUFMetadataValueTypeArray,
			Value: ggufparser.GGUFMetadataKVArrayValue{
				Type:  ggufparser.GGUFMetadataValueTypeUint32,
				Len:   2,
				Array: []any{uint32(4), uint32(8)},
			},
		}
		v := toIndexedValue(kv)
		assert.Equal(t, TypeArray, v.Type)
		arr, ok := v.Value.(IndexedArray)
		assert.True(t, ok)
		assert.Equal(t, TypeUint32, arr.Elem)
		assert.Equal(t, []any{uint32(4), uint32(8)}, arr.Values)
	})
}

// TestOpenIndexEndToEnd runs the real gguf-parser-go backed index, and the
// rich extractor on top of it, against a fixture file.
func TestOpenIndexEndToEnd(t *testing.T) {
	w := newGGUF(3, 5)
	w.kvString("general.architecture", "llama")
	w.kvUint32("llama.expert_count", 8)
	w.kvUint32("llama.expert_used_count", 2)
	w.kvUint32("llama.block_count", 32)
	w.kvUint32("llama.embedding_length", 4096)
	w.tensor("blk.0.attn_q.weight", []uint64{4096, 4096})
	w.tensor("blk.31.ffn_down.weight", []uint64{11008, 4096})
	w.tensor("blk.3.ffn_gate_inp.weight", []uint64{8, 4096})
	path := writeFixture(t, w.bytes())

	idx, err := OpenIndex(path)
	require.NoError(t, err)
	defer idx.Close()

	v, ok := idx.Find("llama.expert_count")
	require.True(t, ok)
	n, ok := coerceInt(v)
	require.True(t, ok)
	assert.Equal(t, int32(8), n)

	assert.Equal(t, 5, idx.EntryCount())
	assert.Equal(t, "general.architecture", idx.EntryName(0))
	assert.Equal(t, 3, idx.TensorCount())
	assert.Equal(t, "blk.0.attn_q.weight", idx.TensorName(0))

	info, err := ScanModelInfo(path)
	require.NoError(t, err)
	assert.True(t, info.IsMoE)
	assert.Equal(t, int32(8), info.ExpertCount)
	assert.Equal(t, int32(2), info.ExpertUsedCount)
	assert.Equal(t, int32(32), info.LayerCount)
	assert.Equal(t, int32(4096), info.HiddenSize)
	assert.Equal(t, int32(1), info.MoELayerCount)
}

func TestOpenIndexMissingFile(t *testing.T) {
	_, err := OpenIndex(filepath.Join(t.TempDir(), "absent.gguf"))
	assert.Error(t, err)
}

func TestUnavailableIndex(t *testing.T) {
	idx, err := UnavailableIndex("anything.gguf")
	assert.Nil(t, idx)
	assert.ErrorIs(t, err, ErrUnavailable)
}
