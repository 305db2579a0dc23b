package tree

import (
	"bytes"
	"testing"

	"github.com/BryceDouglasJames/fileslicer/pkg/hasher"
)

func TestNewNode_SetsHashKeysAndLevel(t *testing.T) {
	data := []byte("value")
	startKey := []byte("start")
	endKey := []byte("end")

	node := NewNode(data, startKey, endKey)

	h := &hasher.SHA256Hasher{}
	expectedHash := h.Hash(data)

	if !bytes.Equal(node.GetHash(), expectedHash) {
		t.Fatalf("expected hash %x, got %x", expectedHash, node.GetHash())
	}
	if !bytes.Equal(node.GetStartKey(), startKey) {
		t.Fatalf("expected start key %q, got %q", startKey, node.GetStartKey())
	}
	if !bytes.Equal(node.GetEndKey(), endKey) {
		t.Fatalf("expected end key %q, got %q", endKey, node.GetEndKey())
	}
	if node.GetLevel() != 0 || !node.IsLeaf() {
		t.Fatalf("expected a level 0 leaf, got level %d", node.GetLevel())
	}
}

func TestNewParent_CombinesChildren(t *testing.T) {
	left := NewNode([]byte("a"), []byte("0"), []byte("0"))
	right := NewNode([]byte("b"), []byte("1"), []byte("1"))

	parent := newParent(left, right)

	h := &hasher.SHA256Hasher{}
	want := h.Hash(append(append([]byte{}, left.GetHash()...), right.GetHash()...))
	if !bytes.Equal(parent.GetHash(), want) {
		t.Fatalf("parent hash does not cover both children")
	}
	if parent.GetLevel() != 1 || parent.IsLeaf() {
		t.Fatalf("expected internal node at level 1, got level %d", parent.GetLevel())
	}
	if string(parent.GetStartKey()) != "0" || string(parent.GetEndKey()) != "1" {
		t.Fatalf("unexpected key span %s..%s", parent.GetStartKey(), parent.GetEndKey())
	}
}
