package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BryceDouglasJames/fileslicer/pkg/types"
	"github.com/BryceDouglasJames/fileslicer/pkg/units"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fileslicer.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, uint64(1), cfg.Split.Size)
	assert.Equal(t, "MB", cfg.Split.Unit)
	assert.Equal(t, "sliced_files.zip", cfg.Output.ZipName)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.PartSize)
	assert.Equal(t, "chunk_manifests", cfg.Manifest.Table)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
split:
  size: 64
  unit: KB
  preserve_lines: true
output:
  dir: out
  zip: true
upload:
  endpoint: http://localhost:8080/upload
  timeout: 30s
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(64), cfg.Split.Size)
	assert.True(t, cfg.Split.PreserveLines)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.True(t, cfg.Output.Zip)
	// untouched fields keep defaults
	assert.Equal(t, "sliced_files.zip", cfg.Output.ZipName)
	assert.Equal(t, 30*time.Second, cfg.Upload.Timeout)

	spec, err := cfg.SplitSpec()
	require.NoError(t, err)
	assert.Equal(t, types.SplitConfig{
		Size:          types.SizeSpec{Value: 64, Unit: types.UnitKilobytes},
		PreserveLines: true,
	}, spec)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Split, cfg.Split)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "split: [unclosed"},
		{"unknown unit", "split:\n  unit: GB\n"},
		{"bad endpoint", "upload:\n  endpoint: not a url\n"},
		{"negative window", "split:\n  window_size: -1\n"},
		{"oversized window", "split:\n  window_size: 4611686018427387904\n"},
		{"zip without name", "output:\n  zip: true\n  zip_name: \"\"\n"},
		{"bad log level", "log_level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)

			var cfgErr *Error
			assert.True(t, errors.As(err, &cfgErr), "got %T", err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"FILESLICER_SPLIT_SIZE":           "5",
		"FILESLICER_SPLIT_UNIT":           "bytes",
		"FILESLICER_SPLIT_PRESERVE_LINES": "true",
		"FILESLICER_UPLOAD_PART_SIZE":     "1024",
		"FILESLICER_MANIFEST_DSN":         "postgres://localhost/db",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, applyEnv(cfg, lookup))

	assert.Equal(t, uint64(5), cfg.Split.Size)
	assert.Equal(t, "bytes", cfg.Split.Unit)
	assert.True(t, cfg.Split.PreserveLines)
	assert.Equal(t, int64(1024), cfg.Upload.PartSize)
	assert.Equal(t, "postgres://localhost/db", cfg.Manifest.DSN)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnv_Invalid(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == "FILESLICER_SPLIT_SIZE" {
			return "lots", true
		}
		return "", false
	}

	err := applyEnv(Default(), lookup)
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "FILESLICER_SPLIT_SIZE", cfgErr.Field)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "split:\n  size: 64\n")
	t.Setenv("FILESLICER_SPLIT_SIZE", "128")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(128), cfg.Split.Size)
}

func TestSplitSpec_UnknownUnit(t *testing.T) {
	cfg := Default()
	cfg.Split.Unit = "parsecs"

	_, err := cfg.SplitSpec()
	assert.ErrorIs(t, err, units.ErrUnknownUnit)
}
