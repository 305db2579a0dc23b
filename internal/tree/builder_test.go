package tree

import (
	"bytes"
	"testing"
)

func TestLeafKey_RoundTripAndOrder(t *testing.T) {
	prev := LeafKey(0)
	for _, i := range []uint32{1, 9, 10, 11, 100, 4294967295} {
		key := LeafKey(i)
		if bytes.Compare(prev, key) >= 0 {
			t.Fatalf("leaf key %q does not sort after %q", key, prev)
		}
		got, err := ParseLeafKey(key)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != i {
			t.Fatalf("expected %d, got %d", i, got)
		}
		prev = key
	}

	if _, err := ParseLeafKey([]byte("chunk-1")); err == nil {
		t.Fatalf("expected error for malformed key")
	}
}

func TestSerializer_DistinctRecords(t *testing.T) {
	s := NewSerializer()
	a := s.SerializeChunk(0, "0_a.txt", 5, []byte{1, 2})
	b := s.SerializeChunk(0, "0_a.txt", 5, []byte{1, 3})
	c := s.SerializeChunk(1, "0_a.txt", 5, []byte{1, 2})

	if bytes.Equal(a, b) || bytes.Equal(a, c) {
		t.Fatalf("distinct records serialized identically")
	}
	if !bytes.Equal(a, s.SerializeChunk(0, "0_a.txt", 5, []byte{1, 2})) {
		t.Fatalf("serialization is not deterministic")
	}
}

func TestStreamingBuilder(t *testing.T) {
	b := NewStreamingBuilder()
	b.AddChunk(0, "0_a.txt", 5, []byte{0xaa})
	b.AddChunk(1, "1_a.txt", 5, []byte{0xbb})

	leaves := b.GetLeaves()
	if len(leaves) != 2 {
		t.Fatalf("expected 2 leaves, got %d", len(leaves))
	}
	if !bytes.Equal(leaves[1].Key, LeafKey(1)) {
		t.Fatalf("unexpected key %q", leaves[1].Key)
	}
}
