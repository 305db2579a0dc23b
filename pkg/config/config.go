// Package config loads fileslicer settings.
//
// Loading order (later overrides earlier):
//  1. Defaults
//  2. YAML file given with --config
//  3. Environment variables: FILESLICER_<SECTION>_<KEY>
//  4. Command line flags (applied by the caller)
package config

import (
	"time"

	"github.com/BryceDouglasJames/fileslicer/pkg/bundle"
	"github.com/BryceDouglasJames/fileslicer/pkg/types"
	"github.com/BryceDouglasJames/fileslicer/pkg/units"
	"github.com/BryceDouglasJames/fileslicer/pkg/upload"
)

// Config is the complete application configuration.
type Config struct {
	Split    SplitConfig    `yaml:"split"`
	Output   OutputConfig   `yaml:"output"`
	Upload   UploadConfig   `yaml:"upload"`
	Manifest ManifestConfig `yaml:"manifest"`
	LogLevel string         `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// SplitConfig holds the chunk budget and mode.
type SplitConfig struct {
	// Zero is allowed here so the splitter can report it with its own error.
	Size          uint64 `yaml:"size"`
	Unit          string `yaml:"unit" validate:"unit"`
	PreserveLines bool   `yaml:"preserve_lines"`
	WindowSize    int    `yaml:"window_size" validate:"gte=0,lte=67108864"` // at most 64 MiB
}

// OutputConfig controls where chunks are written.
type OutputConfig struct {
	Dir      string `yaml:"dir" validate:"required"`
	Zip      bool   `yaml:"zip"`
	ZipName  string `yaml:"zip_name" validate:"required_if=Zip true"`
	Manifest string `yaml:"manifest"` // CSV path; empty disables
}

// UploadConfig configures the multipart uploader.
type UploadConfig struct {
	Endpoint string        `yaml:"endpoint" validate:"omitempty,url"`
	PartSize int64         `yaml:"part_size" validate:"gt=0"`
	Timeout  time.Duration `yaml:"timeout" validate:"gte=0"`
}

// ManifestConfig configures the optional PostgreSQL manifest store.
type ManifestConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table" validate:"required_with=DSN"`
}

// Default returns the configuration used when nothing else is given.
func Default() *Config {
	return &Config{
		Split: SplitConfig{
			Size: 1,
			Unit: "MB",
		},
		Output: OutputConfig{
			Dir:     ".",
			ZipName: bundle.DefaultArchiveName,
		},
		Upload: UploadConfig{
			PartSize: upload.DefaultPartSize,
			Timeout:  5 * time.Minute,
		},
		Manifest: ManifestConfig{
			Table: "chunk_manifests",
		},
		LogLevel: "info",
	}
}

// SplitSpec converts the split section into the splitter's input.
func (c *Config) SplitSpec() (types.SplitConfig, error) {
	unit, err := units.Parse(c.Split.Unit)
	if err != nil {
		return types.SplitConfig{}, err
	}
	return types.SplitConfig{
		Size:          types.SizeSpec{Value: c.Split.Size, Unit: unit},
		PreserveLines: c.Split.PreserveLines,
		WindowSize:    c.Split.WindowSize,
	}, nil
}
