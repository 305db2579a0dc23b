package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BryceDouglasJames/fileslicer/pkg/config"
	"github.com/BryceDouglasJames/fileslicer/pkg/slicer"
	"github.com/BryceDouglasJames/fileslicer/pkg/source"
	"github.com/BryceDouglasJames/fileslicer/pkg/types"
)

// Build info
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	// CLI flags (shared)
	configPath string
	outputJSON bool
	quiet      bool
	verbose    bool

	// Split flags
	size          uint64
	unit          string
	preserveLines bool
	windowSize    int
	outDir        string
	zipOutput     bool
	zipName       string
	manifestPath  string
	recordDSN     string

	// S3 flags
	s3Region   string
	s3Endpoint string

	// Upload flags
	endpoint string
	partSize int64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints split errors as a title line followed by the detail.
func reportError(out io.Writer, err error) {
	if errors.Is(err, errMismatch) {
		return
	}
	var splitErr *slicer.SplitError
	if errors.As(err, &splitErr) {
		fmt.Fprintf(out, "%s\n  %s\n", splitErr.Title(), splitErr.Message)
		if splitErr.Detail != "" {
			fmt.Fprintf(out, "  %s\n", splitErr.Detail)
		}
		return
	}
	fmt.Fprintf(out, "Error: %v\n", err)
}

var rootCmd = &cobra.Command{
	Use:   "fileslicer",
	Short: "Split files into size-bounded chunks",
	Long: `fileslicer cuts a file into chunks no larger than a byte budget.

Chunks are either fixed-size byte ranges or, with --preserve-lines, whole
lines packed greedily so no line is ever broken across two chunks.

Examples:
  fileslicer split --size 10 --unit MB video.mp4
  fileslicer split --size 64 --unit KB --preserve-lines --zip app.log
  fileslicer split --manifest chunks.csv s3://bucket/exports/data.csv
  fileslicer verify data.csv ./chunks
  fileslicer upload --endpoint https://example.com/upload backup.tar`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&outputJSON, "json", "j", false, "Output as JSON (for pipelines)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only output summary line (for scripts/pipelines)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show per-chunk detail and debug logs")
	rootCmd.PersistentFlags().StringVar(&s3Region, "s3-region", "us-east-1", "Region for s3:// sources")
	rootCmd.PersistentFlags().StringVar(&s3Endpoint, "s3-endpoint", "", "Custom S3 endpoint (e.g. MinIO)")

	for _, cmd := range []*cobra.Command{splitCmd, verifyCmd} {
		cmd.Flags().Uint64VarP(&size, "size", "s", 0, "Chunk size value")
		cmd.Flags().StringVarP(&unit, "unit", "u", "MB", "Chunk size unit: bytes, KB or MB")
		cmd.Flags().BoolVarP(&preserveLines, "preserve-lines", "l", false, "Never break a line across chunks")
		cmd.Flags().IntVar(&windowSize, "window", 0, "Read window in bytes for line mode (0 = default)")
		cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory for chunk files")
		cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "CSV manifest path")
	}

	splitCmd.Flags().BoolVarP(&zipOutput, "zip", "z", false, "Bundle chunks into one zip archive")
	splitCmd.Flags().StringVar(&zipName, "zip-name", "", "Archive file name")
	splitCmd.Flags().StringVar(&recordDSN, "record-dsn", "", "PostgreSQL DSN to record the manifest in")

	uploadCmd.Flags().StringVarP(&endpoint, "endpoint", "e", "", "Upload URL")
	uploadCmd.Flags().Int64Var(&partSize, "part-size", 0, "Part size in bytes (default 10 MiB)")

	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fileslicer %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

// loadConfig layers flags the user actually set over the config file and env.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("size") {
		cfg.Split.Size = size
	}
	if flags.Changed("unit") {
		cfg.Split.Unit = unit
	}
	if flags.Changed("preserve-lines") {
		cfg.Split.PreserveLines = preserveLines
	}
	if flags.Changed("window") {
		cfg.Split.WindowSize = windowSize
	}
	if flags.Changed("out") {
		cfg.Output.Dir = outDir
	}
	if flags.Changed("zip") {
		cfg.Output.Zip = zipOutput
	}
	if flags.Changed("zip-name") {
		cfg.Output.ZipName = zipName
	}
	if flags.Changed("manifest") {
		cfg.Output.Manifest = manifestPath
	}
	if flags.Changed("record-dsn") {
		cfg.Manifest.DSN = recordDSN
	}
	if flags.Changed("endpoint") {
		cfg.Upload.Endpoint = endpoint
	}
	if flags.Changed("part-size") {
		cfg.Upload.PartSize = partSize
	}
	if verbose {
		cfg.LogLevel = "debug"
	} else if quiet {
		cfg.LogLevel = "warn"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// openSource opens a local path or an s3://bucket/key URI.
func openSource(ctx context.Context, arg string) (types.Source, io.Closer, error) {
	if strings.HasPrefix(arg, "s3://") {
		bucket, key, err := source.ParseS3URI(arg)
		if err != nil {
			return nil, nil, err
		}
		src, err := source.NewS3(ctx, source.NewS3Client(s3Region, s3Endpoint), bucket, key)
		if err != nil {
			return nil, nil, err
		}
		return src, nopCloser{}, nil
	}

	f, err := source.OpenFile(arg)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func outputAsJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSection(out io.Writer, title string) {
	rule := strings.Repeat("─", len(title)+4)
	fmt.Fprintln(out, "\n"+rule)
	fmt.Fprintf(out, "  %s\n", title)
	fmt.Fprintln(out, rule)
}
