package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/BryceDouglasJames/fileslicer/pkg/manifest"
	"github.com/BryceDouglasJames/fileslicer/pkg/slicer"
)

var exitZero bool

// errMismatch makes the process exit 1 without printing anything more.
var errMismatch = errors.New("chunk files do not match")

var verifyCmd = &cobra.Command{
	Use:   "verify <file|s3://bucket/key> <dir>",
	Short: "Check chunk files on disk against their source",
	Long: `Re-split the source and report chunk files in <dir> that are missing or differ.

With --manifest the recorded manifest is the reference and its split settings
are reused; the source is re-split only to detect that it changed.

Examples:
  fileslicer verify --size 1 --unit MB big.bin chunks/
  fileslicer verify --manifest chunks.csv data.csv chunks/`,
	Args: cobra.ExactArgs(2),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().BoolVar(&exitZero, "exit-zero", false, "Always exit 0 (use for pipelines)")
}

// VerifyResult is the output for JSON mode.
type VerifyResult struct {
	Source        string           `json:"source"`
	Dir           string           `json:"dir"`
	SourceChanged bool             `json:"source_changed"`
	Report        *manifest.Report `json:"report"`
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	srcArg, dir := args[0], args[1]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	src, closer, err := openSource(ctx, srcArg)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", srcArg, err)
	}
	defer closer.Close()

	var recorded *manifest.Manifest
	spec, err := cfg.SplitSpec()
	if err != nil {
		return err
	}
	if cfg.Output.Manifest != "" {
		recorded, err = manifest.ReadCSVFile(cfg.Output.Manifest)
		if err != nil {
			return err
		}
		spec = recorded.SplitConfig()
		spec.WindowSize = cfg.Split.WindowSize
	}

	res, err := slicer.New(slicer.WithLogger(logger)).Split(ctx, src, spec)
	if err != nil {
		return err
	}
	defer res.Release()

	current := manifest.FromResult(res, src.Size())
	reference := current
	if recorded != nil {
		reference = recorded
	}

	report, err := manifest.VerifyDir(ctx, reference, dir, runtime.NumCPU())
	if err != nil {
		return err
	}
	logger.Debug("verified", "checked", report.Checked, "missing", len(report.Missing), "changed", len(report.Changed))

	result := VerifyResult{
		Source:        src.Name(),
		Dir:           dir,
		SourceChanged: current.Root != reference.Root,
		Report:        report,
	}

	if outputJSON {
		err = outputAsJSON(os.Stdout, result)
	} else {
		err = outputVerifyText(os.Stdout, result)
	}
	if err != nil {
		return err
	}

	if (!report.OK() || result.SourceChanged) && !exitZero {
		return errMismatch
	}
	return nil
}

func outputVerifyText(out io.Writer, r VerifyResult) error {
	rep := r.Report
	if quiet {
		if rep.OK() && !r.SourceChanged {
			fmt.Fprintln(out, "ok")
		} else {
			fmt.Fprintf(out, "%d missing, %d changed\n", len(rep.Missing), len(rep.Changed))
		}
		return nil
	}

	fmt.Fprintf(out, "\n  Source: %s\n", r.Source)
	fmt.Fprintf(out, "  Dir:    %s (%d of %d chunk files found)\n", r.Dir, rep.Found, rep.Checked)
	if r.SourceChanged {
		fmt.Fprintln(out, "  Source no longer matches the manifest")
	}

	if verbose {
		printSection(out, "Merkle Roots")
		fmt.Fprintf(out, "  Expected: %s\n", rep.ExpectedRoot)
		fmt.Fprintf(out, "  Observed: %s\n", rep.ObservedRoot)
	}

	printSection(out, "Chunks")
	if rep.OK() {
		fmt.Fprintln(out, "\n All chunk files match :)")
	}
	for _, e := range rep.Missing {
		fmt.Fprintf(out, "| MISSING %s (%d %s)\n", e.Name, e.Size, e.Unit)
	}
	for _, e := range rep.Changed {
		fmt.Fprintf(out, "| CHANGED %s\n", e.Name)
	}

	fmt.Fprintln(out, "\n───────────────────────────────────────────────────────────────")
	fmt.Fprintf(out, "  Summary: %d missing, %d changed of %d\n", len(rep.Missing), len(rep.Changed), rep.Checked)
	fmt.Fprintln(out, "───────────────────────────────────────────────────────────────")
	return nil
}
