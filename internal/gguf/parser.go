package gguf

import (
	"fmt"

	ggufparser "github.com/gpustack/gguf-parser-go"
)

// MetadataIndex is the richer parsing capability the rich extractor depends
// on: random-access lookup over the full metadata section plus the tensor
// descriptor list, with weight payloads never materialized. The production
// implementation is backed by gguf-parser-go; builds without that capability
// use UnavailableIndex instead.
type MetadataIndex interface {
	// Find returns the value stored under key, if present.
	Find(key string) (IndexedValue, bool)
	// EntryCount returns the number of metadata key-value entries.
	EntryCount() int
	// EntryName returns the key of the i-th metadata entry.
	EntryName(i int) string
	// TensorCount returns the number of tensor descriptors.
	TensorCount() int
	// TensorName returns the name of the i-th tensor descriptor.
	TensorName(i int) string
	// Close releases any resources held by the index.
	Close() error
}

// IndexedValue is a type-tagged metadata value from a MetadataIndex. For
// scalar tags Value holds the corresponding Go scalar; for TypeArray it
// holds an IndexedArray.
type IndexedValue struct {
	Type  ValueType
	Value any
}

// IndexedArray is the value of a TypeArray entry.
type IndexedArray struct {
	Elem   ValueType
	Values []any
}

// IndexOpener opens a MetadataIndex for the GGUF file at path.
type IndexOpener func(path string) (MetadataIndex, error)

// OpenIndex opens a gguf-parser-go backed MetadataIndex. Only the header,
// metadata section, and tensor descriptors are read; tensor data stays on
// disk.
func OpenIndex(path string) (MetadataIndex, error) {
	f, err := ggufparser.ParseGGUFFile(path, ggufparser.UseMMap())
	if err != nil {
		return nil, fmt.Errorf("failed to parse GGUF file: %w", err)
	}
	return &ggufIndex{f: f}, nil
}

// UnavailableIndex is the IndexOpener for builds lacking the rich parsing
// capability. It always fails with ErrUnavailable, so callers treat rich
// scan results as unknown rather than as "not MoE".
func UnavailableIndex(string) (MetadataIndex, error) {
	return nil, ErrUnavailable
}

// ggufIndex adapts a parsed gguf-parser-go file to MetadataIndex.
type ggufIndex struct {
	f *ggufparser.GGUFFile
}

func (x *ggufIndex) Find(key string) (IndexedValue, bool) {
	kv, found := x.f.Header.MetadataKV.Get(key)
	if !found {
		return IndexedValue{}, false
	}
	return toIndexedValue(kv), true
}

func (x *ggufIndex) EntryCount() int {
	return len(x.f.Header.MetadataKV)
}

func (x *ggufIndex) EntryName(i int) string {
	return x.f.Header.MetadataKV[i].Key
}

func (x *ggufIndex) TensorCount() int {
	return len(x.f.TensorInfos)
}

func (x *ggufIndex) TensorName(i int) string {
	return x.f.TensorInfos[i].Name
}

func (x *ggufIndex) Close() error {
	// gguf-parser-go reads eagerly; nothing is held open.
	return nil
}

// toIndexedValue converts a gguf-parser-go key-value pair into the package's
// type-tagged value. The two type enumerations share the GGUF on-disk
// numbering.
func toIndexedValue(kv ggufparser.GGUFMetadataKV) IndexedValue {
	vt := ValueType(kv.ValueType)
	if vt == TypeArray {
		// An array entry whose value is not readable coerces to absent
		// downstream; never panic on a malformed file.
		av, ok := kv.Value.(ggufparser.GGUFMetadataKVArrayValue)
		if !ok {
			return IndexedValue{Type: TypeArray}
		}
		return IndexedValue{
			Type:  TypeArray,
			Value: IndexedArray{Elem: ValueType(av.Type), Values: av.Array},
		}
	}
	return IndexedValue{Type: vt, Value: kv.Value}
}
