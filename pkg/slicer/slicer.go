// Package slicer validates split requests, runs the fixed-size or
// line-preserving chunker, and returns named chunks.
package slicer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BryceDouglasJames/fileslicer/internal/binary"
	"github.com/BryceDouglasJames/fileslicer/internal/lines"
	"github.com/BryceDouglasJames/fileslicer/pkg/handle"
	"github.com/BryceDouglasJames/fileslicer/pkg/types"
	"github.com/BryceDouglasJames/fileslicer/pkg/units"
)

// Slicer coordinates split operations. Its only shared state is the optional
// handle registry, which is safe for concurrent use, so one Slicer may serve
// concurrent splits.
type Slicer struct {
	logger  *slog.Logger
	handles *handle.Registry
}

// Option configures a Slicer.
type Option func(*Slicer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Slicer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHandles makes the Slicer acquire an access handle for every chunk.
func WithHandles(r *handle.Registry) Option {
	return func(s *Slicer) {
		s.handles = r
	}
}

func New(opts ...Option) *Slicer {
	s := &Slicer{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split runs a split with a default Slicer.
func Split(ctx context.Context, src types.Source, cfg types.SplitConfig) (*Result, error) {
	return New().Split(ctx, src, cfg)
}

// Split validates cfg against src and cuts src into chunks.
//
// It returns either the complete ordered chunk list or an error, never both.
// Input problems are *SplitError values. When the split fails or ctx is
// cancelled, every handle acquired along the way is released before returning.
func (s *Slicer) Split(ctx context.Context, src types.Source, cfg types.SplitConfig) (*Result, error) {
	budget, err := s.validate(src, cfg)
	if err != nil {
		s.logger.Warn("split rejected",
			"source", src.Name(), "error", err)
		return nil, err
	}

	mode := cfg.Mode()
	log := s.logger.With("source", src.Name(), "mode", mode.String(), "budget", budget)

	b := newBuilder(src.Name(), cfg.Size.Unit.String(), s.handles)
	emit := func(content []byte) error {
		chunk, err := b.add(content)
		if err != nil {
			return err
		}
		log.Debug("chunk closed", "index", chunk.Index, "bytes", chunk.Size)
		return nil
	}

	result := &Result{
		Source:  src.Name(),
		Mode:    mode,
		Budget:  budget,
		handles: s.handles,
	}

	switch mode {
	case types.ModeLines:
		chunker := lines.NewChunker(int64(budget), lines.WithWindowSize(cfg.WindowSize))
		result.TrailingTerminator, err = chunker.Stream(ctx, src, src.Size(), emit)
	default:
		chunker := binary.NewChunker(int64(budget))
		err = chunker.Stream(ctx, src, src.Size(), func(_ binary.Range, content []byte) error {
			return emit(content)
		})
	}

	if err != nil {
		b.discard()
		err = s.wrapStreamError(src, err)
		log.Warn("split aborted", "error", err)
		return nil, err
	}

	result.Chunks = b.chunks
	log.Info("split complete", "chunks", len(result.Chunks))
	return result, nil
}

// validate resolves the budget and runs the pre-flight checks.
func (s *Slicer) validate(src types.Source, cfg types.SplitConfig) (uint64, error) {
	switch cfg.Size.Unit {
	case types.UnitBytes, types.UnitKilobytes, types.UnitMegabytes:
	default:
		return 0, newError(KindUnknownUnit,
			"unknown chunk size unit",
			"The unit must be one of bytes, KB or MB", nil)
	}

	size := src.Size()
	budget, ok := units.Budget(cfg.Size)
	if !ok {
		return 0, newError(KindBudgetExceedsSourceSize,
			"chunk size is larger than the file",
			fmt.Sprintf("The chunk size must not exceed the file size (%d bytes)", size), nil)
	}

	if budget == 0 {
		return 0, newError(KindZeroBudget,
			"chunk size is zero",
			"The chunk size must be greater than zero", nil)
	}

	if size < 0 || budget > uint64(size) {
		return 0, newError(KindBudgetExceedsSourceSize,
			"chunk size is larger than the file",
			fmt.Sprintf("The chunk size (%d bytes) must not exceed the file size (%d bytes)", budget, max(size, 0)), nil)
	}

	return budget, nil
}

func (s *Slicer) wrapStreamError(src types.Source, err error) error {
	var tooLong *lines.LineTooLongError
	if errors.As(err, &tooLong) {
		return newError(KindLineExceedsBudget,
			"a line is larger than the chunk size",
			fmt.Sprintf("The chunk size must be greater than the size of every line; line %d is %d bytes",
				tooLong.Line, tooLong.Length),
			err)
	}
	return fmt.Errorf("failed to split %q: %w", src.Name(), err)
}
