// Package config loads optional YAML run configuration. Flags always
// win over file values; file values win over built-in defaults.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File mirrors the recognized CLI options. Zero values mean "not set".
type File struct {
	SieveLimit      uint64 `yaml:"sieve_limit"`
	Pairs           int    `yaml:"pairs"`
	StartIndex      int    `yaml:"start_index"`
	MaxRadius       int    `yaml:"max_radius"`
	ScanCap         uint64 `yaml:"scan_cap"`
	Threads         int    `yaml:"threads"`
	ChunkSize       int    `yaml:"chunk_size"`
	Control         string `yaml:"control"`
	ControlAttempts int    `yaml:"control_attempts"`
	Seed            int64  `yaml:"seed"`
	Output          string `yaml:"output"`
	Interval        int    `yaml:"interval"`
	ProgressEvery   int    `yaml:"progress_every"`
}

// Load reads and strictly decodes a YAML config file. Unknown keys are
// an error so typos do not vanish silently.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &f, nil
}
