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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parthenon-labs/simscan/pkg/logging"
	"github.com/parthenon-labs/simscan/services/simcore/coordinate"
	"github.com/parthenon-labs/simscan/services/simcore/lang"
)

var (
	scanConfigPath string
	scanJSONOutput bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Batch-scan a directory of submissions for suspicious pairs",
	Long: `scan walks source_directory, treating each immediate
subdirectory as one submission. Every file matching an include pattern
is concatenated (in path order) into that submission's source text.
If template_directory is set, the same walk and concatenation produces
the shared template text subtracted from every match.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanConfigPath, "config", "c", "simscan.yaml", "path to scan config YAML")
	scanCmd.Flags().BoolVar(&scanJSONOutput, "json", false, "emit the WorkResult as JSON instead of a table")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadScanConfig(scanConfigPath)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{Service: "simscan-scan"})

	language, err := lang.ResolveTag(cfg.Language)
	if err != nil {
		return err
	}

	includes, err := compilePatterns(cfg.Include)
	if err != nil {
		return fmt.Errorf("compile include patterns: %w", err)
	}

	var template string
	if cfg.TemplateDirectory != "" {
		template, err = concatDirectory(cfg.TemplateDirectory, includes)
		if err != nil {
			return fmt.Errorf("read template directory: %w", err)
		}
	}

	entries, err := os.ReadDir(cfg.SourceDirectory)
	if err != nil {
		return fmt.Errorf("read source directory: %w", err)
	}

	var submissions []coordinate.Submission
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(cfg.SourceDirectory, e.Name())
		code, err := concatDirectory(dir, includes)
		if err != nil {
			logger.Warn("skipping submission directory", "dir", dir, "error", err)
			continue
		}
		submissions = append(submissions, coordinate.Submission{Name: e.Name(), Code: code})
	}
	logger.Info("tokenizing batch", "submissions", len(submissions))

	if len(submissions) == 0 {
		return fmt.Errorf("no submission directories found under %s", cfg.SourceDirectory)
	}

	req := coordinate.Request{
		Language:    language,
		Template:    template,
		Submissions: submissions,
		Params:      cfg.params(),
	}

	result, err := coordinate.Work(context.Background(), req, lang.NewRegistry(), logger)
	if err != nil {
		return fmt.Errorf("run similarity job: %w", err)
	}

	if scanJSONOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printMatchesTable(result, submissions)
	return nil
}

func printMatchesTable(result *coordinate.WorkResult, submissions []coordinate.Submission) {
	if len(result.Matches) == 0 {
		fmt.Println("no suspicious pairs found")
		return
	}
	fmt.Printf("%-4s %-24s %-24s %6s %6s %6s %s\n", "#", "left", "right", "left%", "right%", "lines", "blocks")
	for i, m := range result.Matches {
		fmt.Printf("%-4d %-24s %-24s %6d %6d %6d %d\n",
			i+1, submissions[m.LeftDoc].Name, submissions[m.RightDoc].Name,
			m.LeftRate, m.RightRate, m.LinesMatched, len(m.Blocks))
	}
}

// compilePatterns compiles every include pattern. An empty list matches
// every file, mirroring a scan with no filtering configured.
func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		out[i] = re
	}
	return out, nil
}

func matchesAny(patterns []*regexp.Regexp, relPath string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, re := range patterns {
		if re.MatchString(relPath) {
			return true
		}
	}
	return false
}

// concatDirectory walks dir recursively and concatenates the contents
// of every included file, in sorted relative-path order, separated by
// a newline so a missing trailing newline in one file cannot merge two
// files' last/first lines.
func concatDirectory(dir string, includes []*regexp.Regexp) (string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if matchesAny(includes, filepath.ToSlash(rel)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", err
		}
		b.Write(data)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
