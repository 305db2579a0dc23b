// Package upload sends a source to an HTTP endpoint as a sequence of fixed-size
// multipart parts.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/xid"
	"go.uber.org/atomic"

	"github.com/BryceDouglasJames/fileslicer/internal/binary"
	"github.com/BryceDouglasJames/fileslicer/pkg/types"
)

const (
	// DefaultPartSize is the size of every part but the last.
	DefaultPartSize = 10 * 1024 * 1024

	// FieldName is the multipart form field carrying the part.
	FieldName = "file"

	// SessionHeader carries an id shared by all parts of one upload.
	SessionHeader = "X-Upload-Id"
)

// TransportError reports the part that stopped an upload.
type TransportError struct {
	Part       int // 1-based
	Total      int
	StatusCode int // zero when no response arrived
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upload part %d/%d: server returned %d", e.Part, e.Total, e.StatusCode)
	}
	return fmt.Sprintf("upload part %d/%d: %v", e.Part, e.Total, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Uploader sends parts one at a time. Parts are never retried; the first
// failure ends the upload.
type Uploader struct {
	endpoint   string
	client     *http.Client
	partSize   int64
	logger     *slog.Logger
	onProgress func(percent int)

	// -1 while no upload is running
	progress *atomic.Int32
}

// Option configures an Uploader.
type Option func(*Uploader)

func WithHTTPClient(c *http.Client) Option {
	return func(u *Uploader) {
		if c != nil {
			u.client = c
		}
	}
}

// WithPartSize overrides DefaultPartSize. Non-positive values are ignored.
func WithPartSize(n int64) Option {
	return func(u *Uploader) {
		if n > 0 {
			u.partSize = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(u *Uploader) {
		if l != nil {
			u.logger = l
		}
	}
}

// WithProgress registers a callback invoked after each completed part with
// round(completed/total*100).
func WithProgress(fn func(percent int)) Option {
	return func(u *Uploader) {
		u.onProgress = fn
	}
}

func New(endpoint string, opts ...Option) *Uploader {
	u := &Uploader{
		endpoint: endpoint,
		client:   http.DefaultClient,
		partSize: DefaultPartSize,
		logger:   slog.New(slog.DiscardHandler),
		progress: atomic.NewInt32(-1),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Progress returns the percentage of the running upload; ok is false when no
// upload is in progress.
func (u *Uploader) Progress() (percent int, ok bool) {
	p := u.progress.Load()
	return int(p), p >= 0
}

// PartName is the multipart filename of part n (1-based).
func PartName(sourceName string, n int) string {
	return fmt.Sprintf("%s.part%d", sourceName, n)
}

// Upload sends src part by part and returns the number of parts sent.
func (u *Uploader) Upload(ctx context.Context, src types.Source) (int, error) {
	chunker := binary.NewChunker(u.partSize)
	total := len(chunker.Ranges(src.Size()))
	session := xid.New().String()
	log := u.logger.With("source", src.Name(), "upload_id", session, "parts", total)

	u.progress.Store(0)
	defer u.progress.Store(-1)

	sent := 0
	err := chunker.Stream(ctx, src, src.Size(), func(_ binary.Range, part []byte) error {
		n := sent + 1
		if err := u.sendPart(ctx, session, PartName(src.Name(), n), part); err != nil {
			err.Part, err.Total = n, total
			return err
		}
		sent = n

		percent := int(math.Round(float64(sent) / float64(total) * 100))
		u.progress.Store(int32(percent))
		log.Debug("part uploaded", "part", n, "bytes", len(part), "progress", percent)
		if u.onProgress != nil {
			u.onProgress(percent)
		}
		return nil
	})
	if err != nil {
		log.Warn("upload stopped", "sent", sent, "error", err)
		return sent, err
	}

	log.Info("upload complete")
	return sent, nil
}

func (u *Uploader) sendPart(ctx context.Context, session, filename string, part []byte) *TransportError {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FieldName, filename))
	header.Set("Content-Type", mimetype.Detect(part).String())

	fw, err := mw.CreatePart(header)
	if err != nil {
		return &TransportError{Err: err}
	}
	if _, err := fw.Write(part); err != nil {
		return &TransportError{Err: err}
	}
	if err := mw.Close(); err != nil {
		return &TransportError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &body)
	if err != nil {
		return &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(SessionHeader, session)

	resp, err := u.client.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	return nil
}
