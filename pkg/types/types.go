package types

import "io"

// Unit is a symbolic chunk size unit.
type Unit int

const (
	UnitUnknown Unit = iota
	UnitBytes
	UnitKilobytes
	UnitMegabytes
)

// String returns the display code shown next to chunk sizes.
func (u Unit) String() string {
	switch u {
	case UnitBytes:
		return "bytes"
	case UnitKilobytes:
		return "KB"
	case UnitMegabytes:
		return "MB"
	default:
		return "unknown"
	}
}

// SizeSpec is a user-chosen chunk budget before unit resolution.
type SizeSpec struct {
	Value uint64
	Unit  Unit
}

// Mode selects the chunking strategy.
type Mode int

const (
	ModeFixed Mode = iota
	ModeLines
)

func (m Mode) String() string {
	if m == ModeLines {
		return "lines"
	}
	return "fixed"
}

// SplitConfig describes one split request.
type SplitConfig struct {
	Size SizeSpec

	// PreserveLines keeps every line intact; chunk boundaries only fall
	// on line terminators.
	PreserveLines bool

	// WindowSize is the read window used when scanning for lines.
	// It only affects I/O granularity, never chunk boundaries. Zero picks a default.
	WindowSize int
}

// Mode returns the chunking mode implied by the config.
func (c SplitConfig) Mode() Mode {
	if c.PreserveLines {
		return ModeLines
	}
	return ModeFixed
}

// Source is a named, sized, random-access byte source.
// Follows the standard Go pattern (like os.File, bytes.Reader).
type Source interface {
	io.ReaderAt

	// Name is used to derive chunk names.
	Name() string

	// Size is the total number of bytes available through ReadAt.
	Size() int64
}

// Chunk is one output slice of a source.
type Chunk struct {
	// Index is 0-based and contiguous within one split.
	Index uint32

	// Name is "{index}_{source name}".
	Name string

	Content []byte

	// Size equals len(Content).
	Size uint64

	// UnitLabel is the display code of the unit the budget was given in.
	UnitLabel string

	// Handle is a revocable access reference for the chunk content.
	// Empty when the split ran without a handle registry.
	Handle string
}
