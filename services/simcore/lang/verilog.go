// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lang

import (
	"context"
	"fmt"

	"github.com/parthenon-labs/simscan/services/simcore/errs"
	"github.com/parthenon-labs/simscan/services/simcore/token"
)

// verilogKeywords lists the reserved words of IEEE 1364 Verilog. Unlike
// the tree-sitter-backed languages, Verilog has no grammar binding
// available in go-tree-sitter's bundled grammar set, so its tokenizer
// is a small hand-rolled lexer grounded directly in the kind-assignment
// contract (hashed spellings for keywords/punctuation, class kinds for
// everything else).
var verilogKeywords = map[string]bool{
	"module": true, "endmodule": true, "input": true, "output": true,
	"inout": true, "wire": true, "reg": true, "integer": true,
	"real": true, "time": true, "parameter": true, "localparam": true,
	"assign": true, "always": true, "initial": true, "begin": true,
	"end": true, "if": true, "else": true, "case": true, "casex": true,
	"casez": true, "endcase": true, "default": true, "for": true,
	"while": true, "repeat": true, "forever": true, "function": true,
	"endfunction": true, "task": true, "endtask": true, "posedge": true,
	"negedge": true, "or": true, "and": true, "not": true, "nand": true,
	"nor": true, "xor": true, "xnor": true, "buf": true, "bufif0": true,
	"bufif1": true, "notif0": true, "notif1": true, "wand": true,
	"wor": true, "tri": true, "tri0": true, "tri1": true, "supply0": true,
	"supply1": true, "generate": true, "endgenerate": true, "genvar": true,
	"defparam": true, "specify": true, "endspecify": true, "signed": true,
	"unsigned": true, "automatic": true, "pulldown": true, "pullup": true,
	"primitive": true, "endprimitive": true, "table": true, "endtable": true,
	"fork": true, "join": true, "disable": true, "deassign": true,
	"force": true, "release": true, "event": true, "vectored": true,
	"scalared": true, "small": true, "medium": true, "large": true,
}

// verilogKeywordKind maps a keyword to a kind byte by hashing its
// spelling into the shared keyword range, the same contract the
// tree-sitter tokenizers use.
func verilogKeywordKind(spelling string) byte {
	return hashSpelling(spelling, keywordBase, keywordRange)
}

func verilogPunctuationKind(spelling string) byte {
	return hashSpelling(spelling, punctuationBase, punctuationRange)
}

// multiCharOperators lists Verilog operators longer than one character,
// ordered longest-first so the lexer's greedy match never splits one.
var multiCharOperators = []string{
	"<<<=", ">>>=", "===", "!==", "<<<", ">>>", "<<=", ">>=",
	"==", "!=", "<=", ">=", "&&", "||", "~&", "~|", "~^", "^~",
	"<<", ">>", "**",
}

type verilogTokenizer struct{}

func newVerilogTokenizer() *verilogTokenizer { return &verilogTokenizer{} }

func (t *verilogTokenizer) Tokenize(ctx context.Context, source []byte) ([]token.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.WrapCancelled(ctx)
	}

	l := &verilogLexer{src: source, line: 1, column: 1}
	var out []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, &errs.TokenizationError{Document: "verilog", Reason: err}
		}
		if tok == nil {
			break
		}
		out = append(out, *tok)
	}
	return out, nil
}

type verilogLexer struct {
	src    []byte
	pos    int
	line   uint32
	column uint32
}

func (l *verilogLexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *verilogLexer) peekAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *verilogLexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return c
}

// next returns the next token, or (nil, nil) at EOF. Comments and
// whitespace carry no structural weight in Verilog and are skipped
// silently; every other token — including the semicolon, which here
// terminates module items rather than adding cosmetic noise — is kept.
func (l *verilogLexer) next() (*token.Token, error) {
	for {
		l.skipWhitespace()
		if !l.skipComment() {
			break
		}
	}
	if l.pos >= len(l.src) {
		return nil, nil
	}

	startLine, startCol := l.line, l.column
	c := l.peek()

	switch {
	case isIdentStart(c):
		spelling := l.readWhile(isIdentPart)
		kind := kindIdentifier
		if verilogKeywords[spelling] {
			kind = verilogKeywordKind(spelling)
		}
		return &token.Token{Kind: kind, Spelling: spelling, Line: startLine, Column: startCol}, nil

	case c >= '0' && c <= '9':
		spelling := l.readNumber()
		return &token.Token{Kind: kindNumber, Spelling: spelling, Line: startLine, Column: startCol}, nil

	case c == '"':
		spelling, err := l.readString()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", startLine, err)
		}
		return &token.Token{Kind: kindString, Spelling: spelling, Line: startLine, Column: startCol}, nil

	default:
		spelling := l.readOperator()
		if spelling == "" {
			// Unrecognized byte: consume it as a one-character token of
			// its own rather than aborting the whole tokenization.
			spelling = string(l.advance())
		}
		return &token.Token{Kind: verilogPunctuationKind(spelling), Spelling: spelling, Line: startLine, Column: startCol}, nil
	}
}

func (l *verilogLexer) skipWhitespace() {
	for l.pos < len(l.src) {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

// skipComment consumes a single line or block comment if present and
// reports whether it did, so the caller can loop to absorb runs of
// whitespace/comments between tokens.
func (l *verilogLexer) skipComment() bool {
	if l.peek() == '/' && l.peekAt(1) == '/' {
		for l.pos < len(l.src) && l.peek() != '\n' {
			l.advance()
		}
		return true
	}
	if l.peek() == '/' && l.peekAt(1) == '*' {
		l.advance()
		l.advance()
		for l.pos < len(l.src) && !(l.peek() == '*' && l.peekAt(1) == '/') {
			l.advance()
		}
		if l.pos < len(l.src) {
			l.advance()
			l.advance()
		}
		return true
	}
	return false
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (l *verilogLexer) readWhile(pred func(byte) bool) string {
	start := l.pos
	for l.pos < len(l.src) && pred(l.peek()) {
		l.advance()
	}
	return string(l.src[start:l.pos])
}

// readNumber accepts Verilog's sized-literal syntax (e.g. 8'hFF,
// 4'b1010) in addition to plain decimal and real literals.
func (l *verilogLexer) readNumber() string {
	start := l.pos
	l.readWhile(func(c byte) bool { return c >= '0' && c <= '9' })
	if l.peek() == '.' && l.peekAt(1) >= '0' && l.peekAt(1) <= '9' {
		l.advance()
		l.readWhile(func(c byte) bool { return c >= '0' && c <= '9' })
	}
	if l.peek() == '\'' {
		l.advance()
		if c := l.peek(); c == 's' || c == 'S' {
			l.advance()
		}
		if l.pos < len(l.src) {
			l.advance() // base letter: b/o/d/h
		}
		l.readWhile(func(c byte) bool {
			return isIdentPart(c) || c == '_' || c == 'x' || c == 'X' || c == 'z' || c == 'Z'
		})
	}
	return string(l.src[start:l.pos])
}

func (l *verilogLexer) readString() (string, error) {
	start := l.pos
	l.advance() // opening quote
	for {
		if l.pos >= len(l.src) {
			return "", fmt.Errorf("unterminated string literal")
		}
		c := l.advance()
		if c == '\\' && l.pos < len(l.src) {
			l.advance()
			continue
		}
		if c == '"' {
			break
		}
	}
	return string(l.src[start:l.pos]), nil
}

func (l *verilogLexer) readOperator() string {
	for _, op := range multiCharOperators {
		if l.pos+len(op) <= len(l.src) && string(l.src[l.pos:l.pos+len(op)]) == op {
			for range op {
				l.advance()
			}
			return op
		}
	}
	switch l.peek() {
	case '(', ')', '[', ']', '{', '}', ';', ',', '.', ':', '@', '#',
		'=', '+', '-', '*', '/', '%', '<', '>', '!', '&', '|', '^', '~', '?':
		return string(l.advance())
	default:
		return ""
	}
}
