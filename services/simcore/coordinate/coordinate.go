// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package coordinate orchestrates the similarity engine end to end:
// tokenize every submission, winnow and rank candidate pairs, tile each
// top pair, and assemble the ranked result.
package coordinate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/parthenon-labs/simscan/pkg/logging"
	"github.com/parthenon-labs/simscan/services/simcore/errs"
	"github.com/parthenon-labs/simscan/services/simcore/index"
	"github.com/parthenon-labs/simscan/services/simcore/lang"
	"github.com/parthenon-labs/simscan/services/simcore/metrics"
	"github.com/parthenon-labs/simscan/services/simcore/tiler"
	"github.com/parthenon-labs/simscan/services/simcore/token"
	"github.com/parthenon-labs/simscan/services/simcore/winnow"
)

// Params tunes every pipeline stage. Zero-valued fields are not filled
// in: Work rejects them through Validate, so callers normally start
// from DefaultParams and override only what they need.
type Params struct {
	Noise               int
	Guarantee           int
	InitialSearchLength int
	MinimumMatchLength  int
	PostingCap          int
	TopPairs            int
}

// DefaultParams returns the engine's documented batch-mode defaults
// (spec.md §6: top_pairs = 200), the right starting point for a
// service handling many jobs such as the HTTP layer.
func DefaultParams() Params {
	return Params{
		Noise:               40,
		Guarantee:           80,
		InitialSearchLength: 40,
		MinimumMatchLength:  20,
		PostingCap:          index.PostingCap,
		TopPairs:            200,
	}
}

// DefaultStandaloneParams returns the same defaults as DefaultParams
// except TopPairs, which spec.md §6 documents as 40 for standalone
// tools (mirrored from original_source/core/src/bin/find_pairs.rs's
// `take(40)`) rather than the batch-mode 200.
func DefaultStandaloneParams() Params {
	p := DefaultParams()
	p.TopPairs = 40
	return p
}

// Validate enforces the parameter contract: noise must not exceed
// guarantee, and noise, guarantee, both search lengths, and PostingCap
// must be positive. TopPairs is not checked.
func (p Params) Validate() error {
	if p.Noise <= 0 || p.Guarantee <= 0 || p.InitialSearchLength <= 0 || p.MinimumMatchLength <= 0 {
		return &errs.ParameterError{Msg: "noise, guarantee, initialSearchLength, and minimumMatchLength must be positive"}
	}
	if p.Noise > p.Guarantee {
		return &errs.ParameterError{Msg: fmt.Sprintf("noise (%d) must not exceed guarantee (%d)", p.Noise, p.Guarantee)}
	}
	if p.PostingCap <= 0 {
		return &errs.ParameterError{Msg: "postingCap must be positive"}
	}
	return nil
}

// Submission is one document in a batch: its display name and its raw
// source text.
type Submission struct {
	Name string
	Code string
}

// Request is the coordinator's unit of work: a batch of submissions in
// one language, an optional shared template, and tuning parameters.
type Request struct {
	Language    lang.Language
	Template    string
	Submissions []Submission
	Params      Params
}

// Block mirrors tiler.Block at the coordinator's public boundary.
type Block = tiler.Block

// PairMatch is one ranked result: the two document indices, their
// per-side match rates, the combined line count, and the blocks that
// produced it.
type PairMatch struct {
	LeftDoc, RightDoc   int
	LeftRate, RightRate int
	LinesMatched        int
	Blocks              []Block
}

// WorkResult is the coordinator's output: every accepted pair match,
// already sorted per §4.5's ordering rule.
type WorkResult struct {
	Matches []PairMatch
}

// document holds everything the pipeline needs about one submission
// after tokenization.
type document struct {
	tokens      []token.Token
	kinds       []byte
	lineCount   int
	fingerprint []winnow.Fingerprint
}

// Work runs the full pipeline: tokenize, winnow, rank, tile, and
// assemble. It checks ctx at three coarse points — after tokenization,
// after ranking, and between pairs during tiling — returning
// errs.ErrCancelled (wrapped) the moment any of them observes
// cancellation, with no partial WorkResult.
func Work(ctx context.Context, req Request, registry *lang.Registry, logger *logging.Logger) (*WorkResult, error) {
	params := req.Params
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(req.Submissions) == 0 {
		return nil, &errs.ParameterError{Msg: "submissions must not be empty"}
	}

	tokenizer, err := registry.Tokenizer(req.Language)
	if err != nil {
		return nil, err
	}

	docs := make([]document, len(req.Submissions))
	for i, sub := range req.Submissions {
		start := time.Now()
		tokens, err := tokenizer.Tokenize(ctx, []byte(sub.Code))
		metrics.ObserveTokenizeDuration(string(req.Language), time.Since(start).Seconds())
		if err != nil {
			metrics.RecordTokenizationError()
			logger.Warn("skipping submission with tokenization error", "name", sub.Name, "error", err)
			docs[i] = document{}
			continue
		}
		kinds := token.Kinds(tokens)
		docs[i] = document{
			tokens:      tokens,
			kinds:       kinds,
			lineCount:   lineCount(sub.Code),
			fingerprint: winnow.Winnow(kinds, params.Noise, params.Guarantee),
		}
	}

	var templateTokens []token.Token
	var templateKinds []byte
	if strings.TrimSpace(req.Template) != "" {
		templateTokens, err = tokenizer.Tokenize(ctx, []byte(req.Template))
		if err != nil {
			return nil, &errs.TokenizationError{Document: "template", Reason: err}
		}
		templateKinds = token.Kinds(templateTokens)
	}

	if err := ctx.Err(); err != nil {
		metrics.RecordCancellation("tokenize")
		return nil, errs.WrapCancelled(ctx)
	}

	fingerprints := make([][]winnow.Fingerprint, len(docs))
	for i, d := range docs {
		fingerprints[i] = d.fingerprint
	}
	templateFingerprints := winnow.AllFingerprints(templateKinds, params.Noise)

	idx := index.Build(fingerprints, templateFingerprints)
	pairs := idx.RankPairs(len(docs), params.TopPairs)
	metrics.ObserveCandidatePairs(len(pairs))

	if err := ctx.Err(); err != nil {
		metrics.RecordCancellation("rank")
		return nil, errs.WrapCancelled(ctx)
	}

	var matches []PairMatch
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			metrics.RecordCancellation("tile")
			return nil, errs.WrapCancelled(ctx)
		}

		left, right := docs[pair.Left], docs[pair.Right]
		if left.tokens == nil || right.tokens == nil {
			continue
		}

		start := time.Now()
		blocks := tileAndSubtract(left, right, templateKinds, params)
		metrics.ObserveTilerDuration(time.Since(start).Seconds())

		if len(blocks) == 0 {
			continue
		}

		leftMatched, rightMatched := matchedLines(blocks)
		matches = append(matches, PairMatch{
			LeftDoc:      pair.Left,
			RightDoc:     pair.Right,
			LeftRate:     ratePercent(leftMatched, left.lineCount),
			RightRate:    ratePercent(rightMatched, right.lineCount),
			LinesMatched: leftMatched + rightMatched,
			Blocks:       blocks,
		})
	}

	sortMatches(matches)
	metrics.RecordJobCompleted("ok")
	return &WorkResult{Matches: matches}, nil
}

// tileAndSubtract runs RKR-GST on the pair, subtracts any overlap with
// the template on both sides, and projects the surviving tiles to
// line-disjoint blocks.
func tileAndSubtract(left, right document, templateKinds []byte, params Params) []Block {
	raw := tiler.Run(left.kinds, right.kinds, params.InitialSearchLength, params.MinimumMatchLength)
	if len(templateKinds) > 0 {
		leftTemplateTiles := tiler.Run(left.kinds, templateKinds, params.InitialSearchLength, params.MinimumMatchLength)
		rightTemplateTiles := tiler.Run(right.kinds, templateKinds, params.InitialSearchLength, params.MinimumMatchLength)
		raw = tiler.SubtractTemplateLeft(raw, leftTemplateTiles)
		raw = tiler.SubtractTemplateRight(raw, rightTemplateTiles)
	}
	return tiler.ApplyLineDisjointness(raw, left.tokens, right.tokens)
}

func matchedLines(blocks []Block) (left, right int) {
	for _, b := range blocks {
		left += b.LeftLineTo - b.LeftLineFrom + 1
		right += b.RightLineTo - b.RightLineFrom + 1
	}
	return left, right
}

func ratePercent(matched, total int) int {
	if total <= 0 {
		return 0
	}
	return matched * 100 / total
}

func lineCount(code string) int {
	if code == "" {
		return 0
	}
	n := strings.Count(code, "\n")
	if !strings.HasSuffix(code, "\n") {
		n++
	}
	return n
}

// sortMatches orders matches by lines_matched descending, ties broken
// by descending (left_rate+right_rate), then ascending (left_doc,
// right_doc).
func sortMatches(matches []PairMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.LinesMatched != b.LinesMatched {
			return a.LinesMatched > b.LinesMatched
		}
		if sa, sb := a.LeftRate+a.RightRate, b.LeftRate+b.RightRate; sa != sb {
			return sa > sb
		}
		if a.LeftDoc != b.LeftDoc {
			return a.LeftDoc < b.LeftDoc
		}
		return a.RightDoc < b.RightDoc
	})
}
