package tree

import (
	"encoding/hex"

	itree "github.com/BryceDouglasJames/fileslicer/internal/tree"
	"github.com/BryceDouglasJames/fileslicer/pkg/hasher"
	"github.com/BryceDouglasJames/fileslicer/pkg/types"
)

// Leaf is re-exported for convenience.
type Leaf = itree.LeafData

// MerkleTree summarizes an ordered chunk list in a single root hash.
type MerkleTree struct {
	root   *MerkleNode
	leaves int
}

// NewMerkleTreeFromLeaves builds a tree over leaves in the given order.
// The root is nil when there are no leaves.
func NewMerkleTreeFromLeaves(leaves []Leaf) *MerkleTree {
	return &MerkleTree{root: buildTree(leaves), leaves: len(leaves)}
}

// NewMerkleTreeFromChunks builds a tree over split output.
func NewMerkleTreeFromChunks(chunks []types.Chunk) *MerkleTree {
	b := itree.NewStreamingBuilder()
	h := &hasher.SHA256Hasher{}
	for _, c := range chunks {
		b.AddChunk(c.Index, c.Name, c.Size, h.Hash(c.Content))
	}
	return NewMerkleTreeFromLeaves(b.GetLeaves())
}

func (t *MerkleTree) GetRoot() *MerkleNode {
	return t.root
}

// LeafCount is the number of chunks the tree covers.
func (t *MerkleTree) LeafCount() int {
	return t.leaves
}

// RootHex returns the hex root hash, or "" for an empty tree.
func (t *MerkleTree) RootHex() string {
	if t == nil || t.root == nil {
		return ""
	}
	return hex.EncodeToString(t.root.hash)
}

// buildTree pairs nodes level by level, carrying an odd last node up unchanged.
func buildTree(leaves []Leaf) *MerkleNode {
	if len(leaves) == 0 {
		return nil
	}

	nodes := make([]*MerkleNode, len(leaves))
	for i, leaf := range leaves {
		nodes[i] = NewNode(leaf.SerializedData, leaf.Key, leaf.Key)
	}

	for len(nodes) > 1 {
		nextLevel := make([]*MerkleNode, 0, (len(nodes)+1)/2)

		for i := 0; i < len(nodes); i += 2 {
			if i+1 < len(nodes) {
				nextLevel = append(nextLevel, newParent(nodes[i], nodes[i+1]))
			} else {
				nextLevel = append(nextLevel, nodes[i])
			}
		}

		nodes = nextLevel
	}

	return nodes[0]
}
