// Package manifest records what a split produced: one entry per chunk with
// its digest, plus the settings needed to reproduce the split.
package manifest

import (
	"encoding/hex"
	"fmt"
	"time"

	itree "github.com/BryceDouglasJames/fileslicer/internal/tree"
	"github.com/BryceDouglasJames/fileslicer/pkg/hasher"
	"github.com/BryceDouglasJames/fileslicer/pkg/slicer"
	"github.com/BryceDouglasJames/fileslicer/pkg/tree"
	"github.com/BryceDouglasJames/fileslicer/pkg/types"
)

// Entry describes one chunk.
type Entry struct {
	Index  uint32 `json:"index"`
	Name   string `json:"name"`
	Size   uint64 `json:"size"`
	Digest string `json:"sha256"`
	Unit   string `json:"unit"`
}

// Manifest describes one split.
type Manifest struct {
	Source             string    `json:"source"`
	SourceSize         int64     `json:"source_size"`
	Mode               string    `json:"mode"`
	Budget             uint64    `json:"budget"`
	TrailingTerminator bool      `json:"trailing_terminator"`
	Root               string    `json:"root"`
	CreatedAt          time.Time `json:"created_at"`
	Entries            []Entry   `json:"chunks"`
}

// FromResult builds the manifest of a split result.
func FromResult(res *slicer.Result, sourceSize int64) *Manifest {
	m := &Manifest{
		Source:             res.Source,
		SourceSize:         sourceSize,
		Mode:               res.Mode.String(),
		Budget:             res.Budget,
		TrailingTerminator: res.TrailingTerminator,
		Root:               tree.NewMerkleTreeFromChunks(res.Chunks).RootHex(),
		CreatedAt:          time.Now().UTC(),
		Entries:            make([]Entry, len(res.Chunks)),
	}
	for i, c := range res.Chunks {
		m.Entries[i] = Entry{
			Index:  c.Index,
			Name:   c.Name,
			Size:   c.Size,
			Digest: hasher.Hex(c.Content),
			Unit:   c.UnitLabel,
		}
	}
	return m
}

// SplitConfig returns the config that reproduces this split.
func (m *Manifest) SplitConfig() types.SplitConfig {
	return types.SplitConfig{
		Size:          types.SizeSpec{Value: m.Budget, Unit: types.UnitBytes},
		PreserveLines: m.Mode == types.ModeLines.String(),
	}
}

// Tree rebuilds the Merkle tree over the recorded entries.
func (m *Manifest) Tree() (*tree.MerkleTree, error) {
	b := itree.NewStreamingBuilder()
	for _, e := range m.Entries {
		digest, err := hex.DecodeString(e.Digest)
		if err != nil {
			return nil, fmt.Errorf("invalid digest for %s: %w", e.Name, err)
		}
		b.AddChunk(e.Index, e.Name, e.Size, digest)
	}
	return tree.NewMerkleTreeFromLeaves(b.GetLeaves()), nil
}
