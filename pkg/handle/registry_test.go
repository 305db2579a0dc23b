package handle

import (
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AcquireOpenRelease(t *testing.T) {
	r := NewRegistry()

	h := r.Acquire([]byte("payload"))
	assert.True(t, strings.HasPrefix(h, Scheme))
	assert.Equal(t, 1, r.Len())

	rd, err := r.Open(h)
	require.NoError(t, err)
	got, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))

	r.Release(h)
	assert.Zero(t, r.Len())

	_, err = r.Open(h)
	require.ErrorIs(t, err, ErrReleased)

	// second release is harmless
	r.Release(h)
}

func TestRegistry_InvalidHandle(t *testing.T) {
	r := NewRegistry()

	_, err := r.Open("blob:not-a-chunk")
	require.Error(t, err)

	_, err = r.Open(Scheme + "zzz")
	require.Error(t, err)

	r.Release("garbage")
	assert.Zero(t, r.Len())
}

func TestRegistry_HandlesAreDistinct(t *testing.T) {
	r := NewRegistry()
	a := r.Acquire([]byte("x"))
	b := r.Acquire([]byte("x"))
	assert.NotEqual(t, a, b)
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := r.Acquire([]byte("data"))
			_, err := r.Open(h)
			assert.NoError(t, err)
			r.Release(h)
		}()
	}
	wg.Wait()

	assert.Zero(t, r.Len())
}
