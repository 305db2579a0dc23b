package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "FILESLICER_"

// Error reports a config file or field that could not be used.
type Error struct {
	Path  string
	Field string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Path != "":
		return fmt.Sprintf("config %s: %v", e.Path, e.Err)
	case e.Field != "":
		return fmt.Sprintf("config field %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Load builds a validated Config from defaults, the file at path (skipped
// when path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &Error{Path: path, Err: err}
		}
		// fields missing from the file keep their defaults
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &Error{Path: path, Err: err}
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type envVar struct {
	name string
	set  func(cfg *Config, v string) error
}

var envVars = []envVar{
	{"SPLIT_SIZE", func(c *Config, v string) (err error) { c.Split.Size, err = strconv.ParseUint(v, 10, 64); return }},
	{"SPLIT_UNIT", func(c *Config, v string) error { c.Split.Unit = v; return nil }},
	{"SPLIT_PRESERVE_LINES", func(c *Config, v string) (err error) { c.Split.PreserveLines, err = strconv.ParseBool(v); return }},
	{"SPLIT_WINDOW_SIZE", func(c *Config, v string) (err error) { c.Split.WindowSize, err = strconv.Atoi(v); return }},
	{"OUTPUT_DIR", func(c *Config, v string) error { c.Output.Dir = v; return nil }},
	{"OUTPUT_ZIP", func(c *Config, v string) (err error) { c.Output.Zip, err = strconv.ParseBool(v); return }},
	{"OUTPUT_ZIP_NAME", func(c *Config, v string) error { c.Output.ZipName = v; return nil }},
	{"OUTPUT_MANIFEST", func(c *Config, v string) error { c.Output.Manifest = v; return nil }},
	{"UPLOAD_ENDPOINT", func(c *Config, v string) error { c.Upload.Endpoint = v; return nil }},
	{"UPLOAD_PART_SIZE", func(c *Config, v string) (err error) { c.Upload.PartSize, err = strconv.ParseInt(v, 10, 64); return }},
	{"UPLOAD_TIMEOUT", func(c *Config, v string) (err error) { c.Upload.Timeout, err = time.ParseDuration(v); return }},
	{"MANIFEST_DSN", func(c *Config, v string) error { c.Manifest.DSN = v; return nil }},
	{"MANIFEST_TABLE", func(c *Config, v string) error { c.Manifest.Table = v; return nil }},
	{"LOG_LEVEL", func(c *Config, v string) error { c.LogLevel = v; return nil }},
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, ev := range envVars {
		v, ok := lookup(EnvPrefix + ev.name)
		if !ok || v == "" {
			continue
		}
		if err := ev.set(cfg, v); err != nil {
			return &Error{Field: EnvPrefix + ev.name, Err: err}
		}
	}
	return nil
}
