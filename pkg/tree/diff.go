package tree

import (
	"bytes"
	"slices"

	itree "github.com/BryceDouglasJames/fileslicer/internal/tree"
)

type DiffType string

const (
	DiffTypeAdded   DiffType = "added"
	DiffTypeRemoved DiffType = "removed"
	DiffTypeChanged DiffType = "changed"
)

// KeyRange is a span of leaf keys whose chunks differ.
type KeyRange struct {
	Start []byte
	End   []byte
	Type  DiffType
}

// Diff compares an expected chunk tree (A) against an observed one (B).
type Diff struct {
	treeA  *MerkleTree
	treeB  *MerkleTree
	ranges []KeyRange
}

func NewDiff(treeA *MerkleTree, treeB *MerkleTree) *Diff {
	return &Diff{treeA: treeA, treeB: treeB}
}

// Compare populates the diff ranges between the two Merkle trees.
// Equal subtree hashes are skipped, so only differing regions are visited.
func (d *Diff) Compare() {
	var differences []KeyRange
	d.compareTreesRecursive(d.treeA.GetRoot(), d.treeB.GetRoot(), &differences)
	d.ranges = differences
}

func (d *Diff) compareTreesRecursive(a *MerkleNode, b *MerkleNode, differences *[]KeyRange) {
	switch {
	case a == nil && b == nil:
		return

	case a == nil:
		*differences = append(*differences, KeyRange{Start: b.startKey, End: b.endKey, Type: DiffTypeAdded})
		return

	case b == nil:
		*differences = append(*differences, KeyRange{Start: a.startKey, End: a.endKey, Type: DiffTypeRemoved})
		return
	}

	if bytes.Equal(a.hash, b.hash) {
		return
	}

	// Different leaves, or a leaf facing a subtree: the trees were built from
	// different chunk counts here, so report the union of both spans.
	if a.IsLeaf() || b.IsLeaf() {
		*differences = append(*differences, KeyRange{
			Start: minKey(a.startKey, b.startKey),
			End:   maxKey(a.endKey, b.endKey),
			Type:  DiffTypeChanged,
		})
		return
	}

	d.compareTreesRecursive(a.left, b.left, differences)
	d.compareTreesRecursive(a.right, b.right, differences)
}

func minKey(a, b []byte) []byte {
	if bytes.Compare(a, b) < 0 {
		return a
	}
	return b
}

func maxKey(a, b []byte) []byte {
	if bytes.Compare(a, b) > 0 {
		return a
	}
	return b
}

func (d *Diff) GetRanges() []KeyRange {
	return d.ranges
}

// Indices expands the diff ranges into the chunk indices they cover,
// ascending and without duplicates. Ranges are candidates: a structural
// mismatch may include chunks that are in fact equal.
func (d *Diff) Indices() []uint32 {
	seen := make(map[uint32]bool)
	var out []uint32
	for _, r := range d.ranges {
		start, err := itree.ParseLeafKey(r.Start)
		if err != nil {
			continue
		}
		end, err := itree.ParseLeafKey(r.End)
		if err != nil {
			continue
		}
		for i := uint64(start); i <= uint64(end); i++ {
			if !seen[uint32(i)] {
				seen[uint32(i)] = true
				out = append(out, uint32(i))
			}
		}
	}
	slices.Sort(out)
	return out
}
