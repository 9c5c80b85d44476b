// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/parthenon-labs/simscan/services/simcore/coordinate"
)

// ScanConfig is the YAML config file accepted by `simscan scan --config`.
// Flags passed on the command line override the matching field.
type ScanConfig struct {
	// Language is the language tag applied to every matched file
	// (spec.md §6's enum, lowercase).
	Language string `yaml:"language"`

	// SourceDirectory holds one subdirectory per submission.
	SourceDirectory string `yaml:"source_directory"`

	// TemplateDirectory, if set, holds starter files. It is walked and
	// concatenated like a submission directory into one template text;
	// files are not paired with submission files by path.
	TemplateDirectory string `yaml:"template_directory"`

	// Include lists regex patterns (matched against each file's path
	// relative to its submission directory) selecting which files to
	// tokenize. A file matching none of the patterns is skipped.
	Include []string `yaml:"include"`

	Tuning TuningConfig `yaml:"tuning"`
}

// TuningConfig exposes the engine's tunable parameters. A zero field
// falls back to coordinate.DefaultStandaloneParams().
type TuningConfig struct {
	Noise               int `yaml:"noise"`
	Guarantee           int `yaml:"guarantee"`
	InitialSearchLength int `yaml:"initial_search_length"`
	MinimumMatchLength  int `yaml:"minimum_match_length"`
	TopPairs            int `yaml:"top_pairs"`
}

// loadScanConfig reads and parses a YAML config file at path.
func loadScanConfig(path string) (ScanConfig, error) {
	var cfg ScanConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// params resolves the config's tuning overrides against the engine's
// documented standalone-tool defaults (spec.md §6: top_pairs = 40 for
// standalone tools, vs. 200 in batch/HTTP mode).
func (c ScanConfig) params() coordinate.Params {
	p := coordinate.DefaultStandaloneParams()
	if c.Tuning.Noise > 0 {
		p.Noise = c.Tuning.Noise
	}
	if c.Tuning.Guarantee > 0 {
		p.Guarantee = c.Tuning.Guarantee
	}
	if c.Tuning.InitialSearchLength > 0 {
		p.InitialSearchLength = c.Tuning.InitialSearchLength
	}
	if c.Tuning.MinimumMatchLength > 0 {
		p.MinimumMatchLength = c.Tuning.MinimumMatchLength
	}
	if c.Tuning.TopPairs > 0 {
		p.TopPairs = c.Tuning.TopPairs
	}
	return p
}
