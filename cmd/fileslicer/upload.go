package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/BryceDouglasJames/fileslicer/pkg/upload"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file|s3://bucket/key>",
	Short: "Upload a file as sequential multipart parts",
	Long: `Upload a file to --endpoint as a sequence of multipart POST requests.

Each request carries one part in the "file" field, named "<file>.partN".
Parts are sent one at a time and the first failure stops the upload.

Examples:
  fileslicer upload --endpoint http://localhost:8080/upload backup.tar
  fileslicer upload --endpoint http://localhost:8080/upload --part-size 1048576 big.iso`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Upload.Endpoint == "" {
		return errors.New("an upload endpoint is required (--endpoint or upload.endpoint)")
	}
	logger := newLogger(cfg.LogLevel)

	src, closer, err := openSource(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer closer.Close()

	u := upload.New(cfg.Upload.Endpoint,
		upload.WithHTTPClient(&http.Client{Timeout: cfg.Upload.Timeout}),
		upload.WithPartSize(cfg.Upload.PartSize),
		upload.WithLogger(logger),
		upload.WithProgress(func(percent int) {
			if !quiet && !outputJSON {
				fmt.Fprintf(os.Stderr, "\r  uploading %s: %3d%%", src.Name(), percent)
			}
		}),
	)

	sent, err := u.Upload(ctx, src)
	if !quiet && !outputJSON && sent > 0 {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return err
	}

	if outputJSON {
		return outputAsJSON(os.Stdout, map[string]any{
			"source":   src.Name(),
			"endpoint": cfg.Upload.Endpoint,
			"parts":    sent,
		})
	}
	fmt.Printf("%d parts uploaded to %s\n", sent, cfg.Upload.Endpoint)
	return nil
}
