package upload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BryceDouglasJames/fileslicer/pkg/source"
)

type receivedPart struct {
	filename string
	data     string
	session  string
}

type partServer struct {
	mu     sync.Mutex
	parts  []receivedPart
	failAt int
}

func (s *partServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAt > 0 && len(s.parts)+1 == s.failAt {
		http.Error(w, "nope", http.StatusInternalServerError)
		return
	}

	f, hdr, err := r.FormFile(FieldName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer f.Close()
	data, _ := io.ReadAll(f)

	s.parts = append(s.parts, receivedPart{
		filename: hdr.Filename,
		data:     string(data),
		session:  r.Header.Get(SessionHeader),
	})
}

func TestUpload_SendsPartsInOrder(t *testing.T) {
	srv := &partServer{}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	var progress []int
	u := New(ts.URL, WithPartSize(4), WithProgress(func(p int) { progress = append(progress, p) }))

	sent, err := u.Upload(context.Background(), source.NewBytes("data.csv", []byte("abcdefghij")))
	require.NoError(t, err)
	assert.Equal(t, 3, sent)

	require.Len(t, srv.parts, 3)
	assert.Equal(t, "data.csv.part1", srv.parts[0].filename)
	assert.Equal(t, "data.csv.part3", srv.parts[2].filename)
	assert.Equal(t, "abcd", srv.parts[0].data)
	assert.Equal(t, "ij", srv.parts[2].data)
	assert.NotEmpty(t, srv.parts[0].session)
	assert.Equal(t, srv.parts[0].session, srv.parts[2].session)

	assert.Equal(t, []int{33, 67, 100}, progress)

	_, active := u.Progress()
	assert.False(t, active, "progress resets once the upload completes")
}

func TestUpload_StopsOnFailedPart(t *testing.T) {
	srv := &partServer{failAt: 2}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	u := New(ts.URL, WithPartSize(4))
	sent, err := u.Upload(context.Background(), source.NewBytes("data.csv", []byte("abcdefghij")))
	assert.Equal(t, 1, sent)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, 2, terr.Part)
	assert.Equal(t, 3, terr.Total)
	assert.Equal(t, http.StatusInternalServerError, terr.StatusCode)

	// no retry and nothing after the failed part
	assert.Len(t, srv.parts, 1)
}

func TestUpload_ConnectionError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := New(url, WithPartSize(4)).Upload(context.Background(), source.NewBytes("x", []byte("abc")))
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 1, terr.Part)
	assert.Zero(t, terr.StatusCode)
}

func TestUpload_DefaultPartSize(t *testing.T) {
	u := New("http://example.invalid")
	assert.Equal(t, int64(DefaultPartSize), u.partSize)
	assert.Equal(t, "big.iso.part12", PartName("big.iso", 12))
}

func TestUpload_EmptySource(t *testing.T) {
	sent, err := New("http://example.invalid").Upload(context.Background(), source.NewBytes("e", nil))
	require.NoError(t, err)
	assert.Zero(t, sent)
}
