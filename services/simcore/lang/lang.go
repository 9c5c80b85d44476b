// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package lang resolves source file extensions to languages and exposes
// a Tokenizer per supported language.
//
// Six of the seven languages are tokenized by walking a tree-sitter
// concrete syntax tree (see treesitter.go); Verilog has no tree-sitter
// grammar binding in the ecosystem and is tokenized by a hand-rolled
// lexer (see verilog.go).
package lang

import (
	"context"
	"strings"

	"github.com/parthenon-labs/simscan/services/simcore/errs"
	"github.com/parthenon-labs/simscan/services/simcore/token"
)

// Language identifies one of the supported source languages.
type Language string

const (
	Cpp        Language = "cpp"
	Rust       Language = "rust"
	Python     Language = "python"
	Verilog    Language = "verilog"
	SQL        Language = "sql"
	JavaScript Language = "javascript"
	Lua        Language = "lua"
)

// Tokenizer turns raw source bytes into an ordered token stream.
//
// The coordinator tokenizes a job's submissions sequentially (spec.md
// §5: single-threaded per job), so implementations need not be safe
// for concurrent use by a single job. The same Registry instance is,
// however, shared read-only across jobs that may run on different
// worker threads simultaneously.
type Tokenizer interface {
	Tokenize(ctx context.Context, source []byte) ([]token.Token, error)
}

// extensionTable maps a lowercased, dot-free file extension to its
// language. Multiple extensions may alias the same language (cpp's C
// and C++ family share one grammar and one tokenizer).
var extensionTable = map[string]Language{
	"cpp": Cpp,
	"cc":  Cpp,
	"cxx": Cpp,
	"c++": Cpp,
	"c":   Cpp,
	"cu":  Cpp,
	"h":   Cpp,
	"hpp": Cpp,
	"rs":  Rust,
	"py":  Python,
	"v":   Verilog,
	"sql": SQL,
	"js":  JavaScript,
	"mjs": JavaScript,
	"lua": Lua,
}

// ResolveExtension maps a file extension (with or without a leading
// dot) to a Language. It returns *errs.UnsupportedLanguage for unknown
// extensions.
func ResolveExtension(ext string) (Language, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	l, ok := extensionTable[ext]
	if !ok {
		return "", &errs.UnsupportedLanguage{TagOrExtension: ext}
	}
	return l, nil
}

// ResolveTag maps an explicit language tag (as sent in a submit
// request) to a Language, independent of any file extension.
func ResolveTag(tag string) (Language, error) {
	switch Language(strings.ToLower(tag)) {
	case Cpp, Rust, Python, Verilog, SQL, JavaScript, Lua:
		return Language(strings.ToLower(tag)), nil
	default:
		return "", &errs.UnsupportedLanguage{TagOrExtension: tag}
	}
}

// Registry holds one Tokenizer instance per supported Language.
type Registry struct {
	tokenizers map[Language]Tokenizer
}

// NewRegistry builds a Registry wired with the default tokenizer for
// every supported language.
func NewRegistry() *Registry {
	return &Registry{
		tokenizers: map[Language]Tokenizer{
			Cpp:        newTreeSitterTokenizer(cppGrammar()),
			Rust:       newTreeSitterTokenizer(rustGrammar()),
			Python:     newTreeSitterTokenizer(pythonGrammar()),
			SQL:        newTreeSitterTokenizer(sqlGrammar()),
			JavaScript: newTreeSitterTokenizer(javascriptGrammar()),
			Lua:        newTreeSitterTokenizer(luaGrammar()),
			Verilog:    newVerilogTokenizer(),
		},
	}
}

// Tokenizer returns the Tokenizer registered for l.
func (r *Registry) Tokenizer(l Language) (Tokenizer, error) {
	t, ok := r.tokenizers[l]
	if !ok {
		return nil, &errs.UnsupportedLanguage{TagOrExtension: string(l)}
	}
	return t, nil
}
