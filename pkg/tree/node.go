package tree

import "github.com/BryceDouglasJames/fileslicer/pkg/hasher"

// MerkleNode covers the chunks whose leaf keys lie in [startKey, endKey].
type MerkleNode struct {
	hash     []byte
	startKey []byte
	endKey   []byte
	left     *MerkleNode
	right    *MerkleNode
	level    int
}

// NewNode hashes data and returns a leaf-level node for the key range.
func NewNode(data []byte, startKey []byte, endKey []byte) *MerkleNode {
	h := &hasher.SHA256Hasher{}
	return &MerkleNode{
		hash:     h.Hash(data),
		startKey: startKey,
		endKey:   endKey,
	}
}

// newParent combines two subtrees; its hash covers both child hashes in order.
func newParent(left, right *MerkleNode) *MerkleNode {
	combined := make([]byte, 0, len(left.hash)+len(right.hash))
	combined = append(combined, left.hash...)
	combined = append(combined, right.hash...)

	parent := NewNode(combined, left.startKey, right.endKey)
	parent.left = left
	parent.right = right
	parent.level = max(left.level, right.level) + 1
	return parent
}

func (n *MerkleNode) GetHash() []byte {
	return n.hash
}

func (n *MerkleNode) GetStartKey() []byte {
	return n.startKey
}

func (n *MerkleNode) GetEndKey() []byte {
	return n.endKey
}

func (n *MerkleNode) GetLeft() *MerkleNode {
	return n.left
}

func (n *MerkleNode) GetRight() *MerkleNode {
	return n.right
}

func (n *MerkleNode) GetLevel() int {
	return n.level
}

func (n *MerkleNode) IsLeaf() bool {
	return n.left == nil && n.right == nil
}
