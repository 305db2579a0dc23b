package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/BryceDouglasJames/fileslicer/pkg/bundle"
	"github.com/BryceDouglasJames/fileslicer/pkg/config"
	"github.com/BryceDouglasJames/fileslicer/pkg/handle"
	"github.com/BryceDouglasJames/fileslicer/pkg/manifest"
	"github.com/BryceDouglasJames/fileslicer/pkg/slicer"
	"github.com/BryceDouglasJames/fileslicer/pkg/types"
)

var splitCmd = &cobra.Command{
	Use:   "split <file|s3://bucket/key>",
	Short: "Split a file into chunks",
	Long: `Split a file into chunks of at most --size --unit bytes.

Chunks are named "<index>_<file name>" and written to --out, or bundled into
one zip archive with --zip.

Examples:
  fileslicer split --size 1 --unit MB big.bin
  fileslicer split --size 4 --unit KB --preserve-lines --out chunks/ app.log
  fileslicer split --zip --zip-name logs.zip --size 512 --unit KB app.log
  fileslicer split --manifest chunks.csv --record-dsn "postgres://localhost/db" data.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

// SplitReport is the output for JSON mode.
type SplitReport struct {
	Source      string       `json:"source"`
	SourceSize  int64        `json:"source_size"`
	ContentType string       `json:"content_type"`
	Mode        string       `json:"mode"`
	Budget      uint64       `json:"budget"`
	Root        string       `json:"root"`
	Chunks      []ChunkInfo  `json:"chunks"`
	Outputs     []string     `json:"outputs"`
	Manifest    string       `json:"manifest,omitempty"`
	RecordID    int64        `json:"record_id,omitempty"`
	Summary     SplitSummary `json:"summary"`
}

type ChunkInfo struct {
	Index  uint32 `json:"index"`
	Name   string `json:"name"`
	Size   uint64 `json:"size"`
	Unit   string `json:"unit"`
	Digest string `json:"sha256"`
	Handle string `json:"handle,omitempty"`
}

type SplitSummary struct {
	Chunks     int    `json:"chunks"`
	TotalBytes uint64 `json:"total_bytes"`
}

func runSplit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	src, closer, err := openSource(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer closer.Close()

	contentType := detectContentType(src)
	logger.Info("source opened", "source", src.Name(), "size", src.Size(), "content_type", contentType)

	spec, err := cfg.SplitSpec()
	if err != nil {
		return err
	}

	registry := handle.NewRegistry()
	s := slicer.New(slicer.WithLogger(logger), slicer.WithHandles(registry))
	res, err := s.Split(ctx, src, spec)
	if err != nil {
		return err
	}
	defer res.Release()

	m := manifest.FromResult(res, src.Size())
	report := SplitReport{
		Source:      src.Name(),
		SourceSize:  src.Size(),
		ContentType: contentType,
		Mode:        m.Mode,
		Budget:      m.Budget,
		Root:        m.Root,
		Chunks:      make([]ChunkInfo, len(res.Chunks)),
		Summary:     SplitSummary{Chunks: len(res.Chunks), TotalBytes: res.TotalSize()},
	}
	for i, c := range res.Chunks {
		report.Chunks[i] = ChunkInfo{
			Index:  c.Index,
			Name:   c.Name,
			Size:   c.Size,
			Unit:   c.UnitLabel,
			Digest: m.Entries[i].Digest,
			Handle: c.Handle,
		}
	}

	report.Outputs, err = writeChunks(cfg, res.Chunks)
	if err != nil {
		return err
	}

	if cfg.Output.Manifest != "" {
		if err := manifest.WriteCSVFile(cfg.Output.Manifest, m); err != nil {
			return err
		}
		report.Manifest = cfg.Output.Manifest
	}

	if cfg.Manifest.DSN != "" {
		report.RecordID, err = recordManifest(ctx, cfg.Manifest, m, logger)
		if err != nil {
			return err
		}
	}

	if outputJSON {
		return outputAsJSON(os.Stdout, report)
	}
	return outputSplitText(os.Stdout, report)
}

// detectContentType sniffs the head of the source. It never fails the split.
func detectContentType(src types.Source) string {
	mt, err := mimetype.DetectReader(io.NewSectionReader(src, 0, src.Size()))
	if err != nil {
		return "application/octet-stream"
	}
	return mt.String()
}

func writeChunks(cfg *config.Config, chunks []types.Chunk) ([]string, error) {
	if cfg.Output.Zip {
		path, err := bundle.WriteZipFile(cfg.Output.Dir, cfg.Output.ZipName, chunks)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
	return bundle.WriteDir(cfg.Output.Dir, chunks)
}

func recordManifest(ctx context.Context, mc config.ManifestConfig, m *manifest.Manifest, logger *slog.Logger) (int64, error) {
	store, err := manifest.NewPostgresStore(ctx, manifest.PostgresConfig{DSN: mc.DSN, Table: mc.Table})
	if err != nil {
		return 0, fmt.Errorf("failed to connect to manifest store: %w", err)
	}
	defer store.Close()

	id, err := store.Save(ctx, m)
	if err != nil {
		return 0, err
	}
	logger.Info("manifest recorded", "table", mc.Table, "id", id)
	return id, nil
}

func outputSplitText(out io.Writer, r SplitReport) error {
	if quiet {
		fmt.Fprintf(out, "%d chunks (%d bytes)\n", r.Summary.Chunks, r.Summary.TotalBytes)
		return nil
	}

	fmt.Fprintf(out, "\n  Source: %s (%d bytes, %s)\n", r.Source, r.SourceSize, r.ContentType)
	fmt.Fprintf(out, "  Mode:   %s, budget %d bytes\n", r.Mode, r.Budget)

	if verbose {
		printSection(out, "Chunks")
		for _, c := range r.Chunks {
			fmt.Fprintf(out, "  %-30s %10d %-5s %s...\n", c.Name, c.Size, c.Unit, c.Digest[:16])
		}
		fmt.Fprintf(out, "\n  Root: %s\n", r.Root)
	}

	printSection(out, "Written")
	for _, p := range r.Outputs {
		fmt.Fprintf(out, "  %s\n", p)
	}
	if r.Manifest != "" {
		fmt.Fprintf(out, "  %s (manifest)\n", r.Manifest)
	}
	if r.RecordID != 0 {
		fmt.Fprintf(out, "  manifest record #%d\n", r.RecordID)
	}

	fmt.Fprintln(out, "\n───────────────────────────────────────────────────────────────")
	fmt.Fprintf(out, "  Summary: %d chunks, %d bytes\n", r.Summary.Chunks, r.Summary.TotalBytes)
	fmt.Fprintln(out, "───────────────────────────────────────────────────────────────")
	return nil
}
