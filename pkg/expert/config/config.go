// Package config loads the optional YAML options file for the CLI and
// the interactive mode.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options controls presentation and collaborator behavior. Zero values
// are filled in by Default.
type Options struct {
	Color        bool   `yaml:"color"`
	Trace        bool   `yaml:"trace"`
	HistoryDB    string `yaml:"history_db"`
	SuggestLimit int    `yaml:"suggest_limit"`
}

// Default returns the options used when no config file is given.
func Default() Options {
	return Options{
		Color:        true,
		SuggestLimit: 26,
	}
}

// Load reads a YAML options file over the defaults.
func Load(path string) (Options, error) {
	opts := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("load options: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parse options: %w", err)
	}
	if opts.SuggestLimit <= 0 {
		opts.SuggestLimit = Default().SuggestLimit
	}
	return opts, nil
}
