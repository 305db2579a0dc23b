// Package handle hands out revocable references to chunk content, the way a
// browser hands out object URLs for blobs.
package handle

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Scheme prefixes every handle string.
const Scheme = "chunk://"

// ErrReleased is returned when opening a handle that was released or never issued.
var ErrReleased = errors.New("handle released")

// Registry issues and revokes handles. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID][]byte
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[uuid.UUID][]byte)}
}

// Acquire registers content and returns its handle.
// The registry keeps a reference to content until Release.
func (r *Registry) Acquire(content []byte) string {
	id := uuid.New()

	r.mu.Lock()
	r.entries[id] = content
	r.mu.Unlock()

	return Scheme + id.String()
}

// Open returns a reader over the content behind h.
func (r *Registry) Open(h string) (io.Reader, error) {
	id, err := parse(h)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	content, ok := r.entries[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrReleased, h)
	}
	return bytes.NewReader(content), nil
}

// Release revokes h. Releasing an unknown or already released handle is a no-op.
func (r *Registry) Release(h string) {
	id, err := parse(h)
	if err != nil {
		return
	}

	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func parse(h string) (uuid.UUID, error) {
	raw, ok := strings.CutPrefix(h, Scheme)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid handle %q", h)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid handle %q: %w", h, err)
	}
	return id, nil
}
