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
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePatterns_EmptyMatchesEverything(t *testing.T) {
	patterns, err := compilePatterns(nil)
	require.NoError(t, err)
	assert.True(t, matchesAny(patterns, "anything.py"))
}

func TestCompilePatterns_InvalidRegexErrors(t *testing.T) {
	_, err := compilePatterns([]string{"[invalid"})
	assert.Error(t, err)
}

func TestMatchesAny(t *testing.T) {
	patterns, err := compilePatterns([]string{`\.py$`})
	require.NoError(t, err)
	assert.True(t, matchesAny(patterns, "solution.py"))
	assert.False(t, matchesAny(patterns, "solution.pyc"))
}

func TestConcatDirectory_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.py"), []byte("line2"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.py"), []byte("line1"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("ignored"), 0644))

	includes := []*regexp.Regexp{regexp.MustCompile(`\.py$`)}
	got, err := concatDirectory(dir, includes)
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\n", got)
}

func TestConcatDirectory_NestedSubdirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pkg"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "nested.py"), []byte("nested"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "top.py"), []byte("top"), 0644))

	got, err := concatDirectory(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "nested\ntop\n", got)
}

func TestScanConfig_ParamsFallBackToDefaults(t *testing.T) {
	cfg := ScanConfig{}
	p := cfg.params()
	assert.Equal(t, 40, p.Noise)
	assert.Equal(t, 80, p.Guarantee)
	assert.Equal(t, 40, p.TopPairs, "standalone scan defaults to the spec's 40-pair cap, not batch mode's 200")
}

func TestScanConfig_ParamsOverrideDefaults(t *testing.T) {
	cfg := ScanConfig{Tuning: TuningConfig{Noise: 5, TopPairs: 10}}
	p := cfg.params()
	assert.Equal(t, 5, p.Noise)
	assert.Equal(t, 10, p.TopPairs)
	assert.Equal(t, 80, p.Guarantee)
}
