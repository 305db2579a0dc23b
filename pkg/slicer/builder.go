package slicer

import (
	"fmt"
	"math"
	"strconv"

	"github.com/BryceDouglasJames/fileslicer/pkg/handle"
	"github.com/BryceDouglasJames/fileslicer/pkg/types"
)

// ChunkName returns the name of the chunk at index for a source.
func ChunkName(index uint32, sourceName string) string {
	return strconv.FormatUint(uint64(index), 10) + "_" + sourceName
}

// builder turns raw chunk content into named Chunk records for one split.
// A builder is never shared between splits.
type builder struct {
	source    string
	unitLabel string
	handles   *handle.Registry
	chunks    []types.Chunk
}

func newBuilder(source, unitLabel string, handles *handle.Registry) *builder {
	return &builder{source: source, unitLabel: unitLabel, handles: handles}
}

// add takes ownership of content and appends it as the next chunk.
func (b *builder) add(content []byte) (types.Chunk, error) {
	if uint64(len(b.chunks)) > math.MaxUint32 {
		return types.Chunk{}, fmt.Errorf("too many chunks for %q", b.source)
	}
	index := uint32(len(b.chunks))

	chunk := types.Chunk{
		Index:     index,
		Name:      ChunkName(index, b.source),
		Content:   content,
		Size:      uint64(len(content)),
		UnitLabel: b.unitLabel,
	}
	if b.handles != nil {
		chunk.Handle = b.handles.Acquire(content)
	}

	b.chunks = append(b.chunks, chunk)
	return chunk, nil
}

// discard releases every handle acquired so far and drops the chunks.
func (b *builder) discard() {
	if b.handles != nil {
		for _, c := range b.chunks {
			b.handles.Release(c.Handle)
		}
	}
	b.chunks = nil
}
