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

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/lua"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/sql"

	"github.com/parthenon-labs/simscan/services/simcore/errs"
	"github.com/parthenon-labs/simscan/services/simcore/token"
)

// Reserved kind bytes for the classes every grammar collapses onto,
// disjoint from the keyword/punctuation hash ranges below.
const (
	kindIdentifier byte = 240
	kindNumber     byte = 241
	kindString     byte = 242
	kindOther      byte = 243

	// Keyword and punctuation kinds occupy disjoint 0-119 / 120-239
	// ranges so that a keyword and a punctuation mark can never collide
	// even if their spellings hash to the same residue.
	keywordBase     = 0
	keywordRange    = 120
	punctuationBase = 120
	punctuationRange = 120
)

// namedLeafKind classifies a named leaf node (identifiers, literals,
// comments) shared across all tree-sitter grammars used here. Returns
// (kind, skip).
func namedLeafKind(nodeType string) (byte, bool) {
	switch nodeType {
	case "comment", "line_comment", "block_comment":
		return 0, true
	case "identifier", "field_identifier", "type_identifier",
		"property_identifier", "shorthand_property_identifier",
		"variable_name", "column_name", "identifier_name":
		return kindIdentifier, false
	case "number", "integer", "float", "number_literal":
		return kindNumber, false
	case "string", "string_literal", "raw_string_literal",
		"char_literal", "string_content", "interpreted_string_literal":
		return kindString, false
	default:
		return kindOther, false
	}
}

// hashSpelling folds a spelling into [0, rangeSize) deterministically,
// so the same keyword or punctuation mark always maps to the same kind
// byte within its base range across calls and processes.
func hashSpelling(spelling string, base byte, rangeSize int) byte {
	var h uint32 = 2166136261
	for i := 0; i < len(spelling); i++ {
		h ^= uint32(spelling[i])
		h *= 16777619
	}
	return base + byte(int(h)%rangeSize)
}

// grammar bundles a tree-sitter language with the name reported in
// tokenization errors. Keyword vs. punctuation classification of
// anonymous leaves is shared by every grammar (see anonymousLeafKind).
type grammar struct {
	language *sitter.Language
	name     string
}

func cppGrammar() grammar        { return grammar{language: cpp.GetLanguage(), name: "cpp"} }
func rustGrammar() grammar       { return grammar{language: rust.GetLanguage(), name: "rust"} }
func pythonGrammar() grammar     { return grammar{language: python.GetLanguage(), name: "python"} }
func sqlGrammar() grammar        { return grammar{language: sql.GetLanguage(), name: "sql"} }
func javascriptGrammar() grammar { return grammar{language: javascript.GetLanguage(), name: "javascript"} }
func luaGrammar() grammar        { return grammar{language: lua.GetLanguage(), name: "lua"} }

// treeSitterTokenizer walks the leaf nodes of a tree-sitter concrete
// syntax tree in source order. Anonymous nodes (keywords, punctuation)
// use their Type(), which tree-sitter sets equal to the token's literal
// spelling for every grammar bundled here; named leaf nodes collapse to
// a small set of class kinds via namedLeafKind.
type treeSitterTokenizer struct {
	g grammar
}

func newTreeSitterTokenizer(g grammar) *treeSitterTokenizer {
	return &treeSitterTokenizer{g: g}
}

func (t *treeSitterTokenizer) Tokenize(ctx context.Context, source []byte) ([]token.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.WrapCancelled(ctx)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(t.g.language)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, &errs.TokenizationError{Document: t.g.name, Reason: err}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, &errs.TokenizationError{Document: t.g.name, Reason: fmt.Errorf("tree-sitter returned nil root node")}
	}

	var out []token.Token
	walkLeaves(root, source, func(n *sitter.Node) {
		spelling := n.Content(source)
		if spelling == "" {
			return
		}
		var kind byte
		var skip bool
		if n.IsNamed() {
			kind, skip = namedLeafKind(n.Type())
		} else {
			kind, skip = anonymousLeafKind(n.Type(), spelling)
		}
		if skip {
			return
		}
		start := n.StartPoint()
		out = append(out, token.Token{
			Kind:     kind,
			Spelling: spelling,
			Line:     start.Row + 1,
			Column:   start.Column + 1,
		})
	})

	return out, nil
}

// anonymousLeafKind classifies an unnamed leaf (keyword or punctuation)
// by spelling: a keyword begins with a letter or underscore, everything
// else is punctuation or an operator. Semicolons are dropped outright
// — a brace-delimited language's statement terminator adds noise that
// style differences (one statement per line vs. several) would
// otherwise defeat.
func anonymousLeafKind(nodeType, spelling string) (byte, bool) {
	if spelling == ";" {
		return 0, true
	}
	c := spelling[0]
	isKeyword := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
	if isKeyword {
		return hashSpelling(spelling, keywordBase, keywordRange), false
	}
	return hashSpelling(spelling, punctuationBase, punctuationRange), false
}

// walkLeaves visits every leaf node (no children) of the tree in
// source order, depth-first.
func walkLeaves(n *sitter.Node, source []byte, visit func(*sitter.Node)) {
	if n.ChildCount() == 0 {
		visit(n)
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walkLeaves(n.Child(i), source, visit)
	}
}
