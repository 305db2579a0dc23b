package tree

import (
	"bytes"
	"encoding/binary"
)

// enc is the byte order used for all serialization.
// BigEndian ensures consistent hashing across platforms.
var enc = binary.BigEndian

// Serializer converts chunk records to bytes for consistent hashing.
// A chunk file on disk and the chunk it came from serialize identically.
type Serializer struct {
	buf bytes.Buffer
}

// NewSerializer creates a new Serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// SerializeChunk encodes one chunk record. Each field is length-prefixed or
// fixed-width, so distinct records never encode to the same bytes.
func (s *Serializer) SerializeChunk(index uint32, name string, size uint64, digest []byte) []byte {
	s.buf.Reset()

	s.writeUint64(uint64(index))
	s.writeBytes([]byte(name))
	s.writeUint64(size)
	s.writeBytes(digest)

	// Return a copy to avoid buffer reuse issues
	result := make([]byte, s.buf.Len())
	copy(result, s.buf.Bytes())
	return result
}

func (s *Serializer) writeBytes(b []byte) {
	var lenBuf [4]byte
	enc.PutUint32(lenBuf[:], uint32(len(b)))
	s.buf.Write(lenBuf[:])
	s.buf.Write(b)
}

func (s *Serializer) writeUint64(v uint64) {
	var buf [8]byte
	enc.PutUint64(buf[:], v)
	s.buf.Write(buf[:])
}
