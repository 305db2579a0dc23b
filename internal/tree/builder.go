package tree

import (
	"fmt"
	"strconv"
)

// LeafData holds the data needed to create a leaf node.
type LeafData struct {
	Key            []byte
	SerializedData []byte
}

// LeafKey is the key of the leaf for chunk index. Keys sort in index order.
func LeafKey(index uint32) []byte {
	return fmt.Appendf(nil, "%010d", index)
}

// ParseLeafKey is the inverse of LeafKey.
func ParseLeafKey(key []byte) (uint32, error) {
	n, err := strconv.ParseUint(string(key), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid leaf key %q: %w", key, err)
	}
	return uint32(n), nil
}

// StreamingBuilder collects leaves one chunk at a time, in index order.
type StreamingBuilder struct {
	serializer *Serializer
	leaves     []LeafData
}

// NewStreamingBuilder creates an empty builder.
func NewStreamingBuilder() *StreamingBuilder {
	return &StreamingBuilder{
		serializer: NewSerializer(),
	}
}

// AddChunk adds the leaf for one chunk record.
func (b *StreamingBuilder) AddChunk(index uint32, name string, size uint64, digest []byte) {
	b.leaves = append(b.leaves, LeafData{
		Key:            LeafKey(index),
		SerializedData: b.serializer.SerializeChunk(index, name, size, digest),
	})
}

// GetLeaves returns all collected leaf data for tree construction.
func (b *StreamingBuilder) GetLeaves() []LeafData {
	return b.leaves
}
