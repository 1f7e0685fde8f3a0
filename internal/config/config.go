// Package config loads the optional petrc.yaml compiler options file. These
// are tool-level knobs (how much to print, when to stop); the language
// itself has no configuration. The package manifest and lockfile are a
// separate concern owned by surrounding tooling, not by the compiler core.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the options file looked for in the working directory.
const DefaultFile = "petrc.yaml"

// Options are the compiler's tool-level settings.
type Options struct {
	// MaxErrors caps how many diagnostics the CLI prints before
	// summarizing the rest. Zero means no cap.
	MaxErrors int `yaml:"max_errors"`
	// Verbose prints per-stage progress to stderr.
	Verbose bool `yaml:"verbose"`
	// TraceConstraints dumps the collected constraint list once
	// compilation has finished, showing the solved slot contents.
	TraceConstraints bool `yaml:"trace_constraints"`
	// JSON switches diagnostic output to one report per line as JSON.
	JSON bool `yaml:"json"`
}

// Default returns the zero configuration: print everything, quietly, as
// text.
func Default() *Options {
	return &Options{}
}

// Load reads options from path. A missing file is not an error; it yields
// the defaults.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	opts := Default()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if opts.MaxErrors < 0 {
		return nil, fmt.Errorf("parsing %s: max_errors must not be negative", path)
	}
	return opts, nil
}
