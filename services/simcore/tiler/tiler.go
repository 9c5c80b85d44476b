// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tiler implements Karp-Rabin Greedy String Tiling (RKR-GST)
// over two token-kind streams, template subtraction, and the
// line-disjointness filter that turns tiles into reportable blocks.
package tiler

import (
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/parthenon-labs/simscan/services/simcore/token"
)

// Tile is a maximal common substring between a pattern stream A and a
// text stream B: A[PatternIndex:PatternIndex+Length] equals
// B[TextIndex:TextIndex+Length] kind-by-kind.
type Tile struct {
	PatternIndex int
	TextIndex    int
	Length       int
}

// Run implements the RKR-GST algorithm: starting at search length
// initialSearchLength, repeatedly scan for the longest unmarked common
// substring of the current length, mark every maximal match of that
// length, and halve the search length whenever the pass maximum drops
// to or below twice the current length. Stops once the search length
// falls below minimumMatchLength.
//
// Returned tiles are ordered by non-increasing Length, ties broken by
// ascending PatternIndex. No position in A or B belongs to more than
// one tile.
func Run(a, b []byte, initialSearchLength, minimumMatchLength int) []Tile {
	if initialSearchLength < 1 {
		initialSearchLength = 1
	}
	if len(a) == 0 || len(b) == 0 {
		return nil
	}

	markedA := make([]bool, len(a))
	markedB := make([]bool, len(b))

	var tiles []Tile
	s := initialSearchLength

	for s >= minimumMatchLength {
		passMax, found := scanPass(a, b, markedA, markedB, s)

		for _, m := range found {
			if m.Length != passMax {
				continue
			}
			if rangeMarked(markedA, m.PatternIndex, m.Length) || rangeMarked(markedB, m.TextIndex, m.Length) {
				continue
			}
			markRange(markedA, m.PatternIndex, m.Length)
			markRange(markedB, m.TextIndex, m.Length)
			tiles = append(tiles, m)
		}

		if passMax > 2*s {
			continue
		}
		s /= 2
	}

	sort.SliceStable(tiles, func(i, j int) bool {
		if tiles[i].Length != tiles[j].Length {
			return tiles[i].Length > tiles[j].Length
		}
		return tiles[i].PatternIndex < tiles[j].PatternIndex
	})
	return tiles
}

// scanPass builds a hash multi-map of every unmarked length-s substring
// of a, then for every unmarked length-s substring of b looks up
// candidates, verifies kind-by-kind, and right-extends while both sides
// remain unmarked. It returns every maximal match found in the pass and
// the longest length among them (0 if none).
func scanPass(a, b []byte, markedA, markedB []bool, s int) (int, []Tile) {
	if s > len(a) || s > len(b) {
		return 0, nil
	}

	type candidate struct{ start int }
	index := make(map[uint64][]candidate)
	for i := 0; i+s <= len(a); i++ {
		if rangeMarked(markedA, i, s) {
			continue
		}
		index[hashWindow(a[i:i+s])] = append(index[hashWindow(a[i:i+s])], candidate{start: i})
	}

	passMax := 0
	var found []Tile

	for j := 0; j+s <= len(b); j++ {
		if rangeMarked(markedB, j, s) {
			continue
		}
		h := hashWindow(b[j : j+s])
		cands, ok := index[h]
		if !ok {
			continue
		}
		bestLen := 0
		bestStart := -1
		for _, c := range cands {
			if !equalKinds(a[c.start:c.start+s], b[j:j+s]) {
				continue
			}
			length := extend(a, b, markedA, markedB, c.start, j, s)
			if length > bestLen {
				bestLen = length
				bestStart = c.start
			}
		}
		if bestStart < 0 {
			continue
		}
		if bestLen > passMax {
			passMax = bestLen
		}
		found = append(found, Tile{PatternIndex: bestStart, TextIndex: j, Length: bestLen})
	}

	return passMax, found
}

// extend grows a verified length-s match at (aStart, bStart) to the
// right as far as both streams agree and neither side is already
// marked, returning the resulting total length.
func extend(a, b []byte, markedA, markedB []bool, aStart, bStart, s int) int {
	length := s
	for aStart+length < len(a) && bStart+length < len(b) &&
		!markedA[aStart+length] && !markedB[bStart+length] &&
		a[aStart+length] == b[bStart+length] {
		length++
	}
	return length
}

func equalKinds(x, y []byte) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

func hashWindow(window []byte) uint64 {
	return xxhash.Sum64(window)
}

func rangeMarked(marked []bool, start, length int) bool {
	for i := start; i < start+length; i++ {
		if marked[i] {
			return true
		}
	}
	return false
}

func markRange(marked []bool, start, length int) {
	for i := start; i < start+length; i++ {
		marked[i] = true
	}
}

// side selects which half of a Tile (left/pattern or right/text) a
// template-subtraction pass operates on.
type side int

const (
	left side = iota
	right
)

// SubtractTemplateLeft subtracts template overlap using each tile's
// pattern-index range (the left/A side of a raw inter-submission run).
func SubtractTemplateLeft(tiles, templateTiles []Tile) []Tile {
	return SubtractTemplate(tiles, templateTiles, left)
}

// SubtractTemplateRight subtracts template overlap using each tile's
// text-index range (the right/B side of a raw inter-submission run).
func SubtractTemplateRight(tiles, templateTiles []Tile) []Tile {
	return SubtractTemplate(tiles, templateTiles, right)
}

// SubtractTemplate resolves overlap between raw tiles and the tiles
// matched against a template, on one side at a time. For every
// template tile t and every surviving raw tile m it applies one of
// five cases depending on how [f, l] (m's range on this side) overlaps
// [F, L] (t's range): fully-covered tiles are dropped, head/tail
// overlap shrinks m in place, a template range properly inside m
// splits it into two, and disjoint ranges leave m unchanged.
func SubtractTemplate(tiles []Tile, templateTiles []Tile, s side) []Tile {
	for _, t := range templateTiles {
		tFrom, tTo := templateRange(t, s)

		var next []Tile
		for _, m := range tiles {
			mFrom, mTo := templateRange(m, s)

			switch {
			case tFrom <= mFrom && mTo <= tTo:
				// fully covered: drop.
			case tFrom <= mFrom && mFrom <= tTo:
				diff := tTo - mFrom + 1
				next = append(next, shiftTile(m, diff, diff, -diff))
			case tFrom <= mTo && mTo <= tTo:
				diff := mTo - tFrom + 1
				next = append(next, shiftTile(m, 0, 0, -diff))
			case mFrom <= tFrom && tTo <= mTo:
				headLen := tFrom - mFrom
				if headLen > 0 {
					next = append(next, shiftTile(m, 0, 0, headLen-m.Length))
				}
				diff := tTo - mFrom + 1
				tailLen := m.Length - diff
				if tailLen > 0 {
					next = append(next, shiftTile(m, diff, diff, tailLen-m.Length))
				}
			default:
				next = append(next, m)
			}
		}
		tiles = next
	}
	return tiles
}

// templateRange returns the [from, to] range of tile m on side s: the
// pattern-index range for left, the text-index range for right.
func templateRange(m Tile, s side) (int, int) {
	if s == left {
		return m.PatternIndex, m.PatternIndex + m.Length - 1
	}
	return m.TextIndex, m.TextIndex + m.Length - 1
}

// shiftTile returns a copy of m with its pattern/text indices advanced
// by patternDelta/textDelta and its length adjusted by lengthDelta.
func shiftTile(m Tile, patternDelta, textDelta, lengthDelta int) Tile {
	m.PatternIndex += patternDelta
	m.TextIndex += textDelta
	m.Length += lengthDelta
	return m
}

// Block is a reportable matching region, projected from token indices
// to 0-based line numbers.
type Block struct {
	LeftLineFrom, LeftLineTo   int
	RightLineFrom, RightLineTo int
}

// ApplyLineDisjointness walks tiles in order and drops any tile whose
// first or last token, on either side, falls on a line already claimed
// by a previously accepted tile. It deliberately checks only the first
// and last line of each tile, not every line in between — a known,
// intentionally preserved quirk that keeps the filter cheap.
func ApplyLineDisjointness(tiles []Tile, tokensLeft, tokensRight []token.Token) []Block {
	if len(tokensLeft) == 0 || len(tokensRight) == 0 {
		return nil
	}

	leftLineCount := maxLine(tokensLeft)
	rightLineCount := maxLine(tokensRight)
	claimedLeft := make([]bool, leftLineCount+1)
	claimedRight := make([]bool, rightLineCount+1)

	var blocks []Block
	for _, m := range tiles {
		if m.Length <= 0 {
			continue
		}
		lineFromLeft := int(tokensLeft[m.PatternIndex].Line) - 1
		lineToLeft := int(tokensLeft[m.PatternIndex+m.Length-1].Line) - 1
		lineFromRight := int(tokensRight[m.TextIndex].Line) - 1
		lineToRight := int(tokensRight[m.TextIndex+m.Length-1].Line) - 1

		if claimedLeft[lineFromLeft] || claimedLeft[lineToLeft] ||
			claimedRight[lineFromRight] || claimedRight[lineToRight] {
			continue
		}

		for i := lineFromLeft; i <= lineToLeft; i++ {
			claimedLeft[i] = true
		}
		for i := lineFromRight; i <= lineToRight; i++ {
			claimedRight[i] = true
		}

		blocks = append(blocks, Block{
			LeftLineFrom:  lineFromLeft,
			LeftLineTo:    lineToLeft,
			RightLineFrom: lineFromRight,
			RightLineTo:   lineToRight,
		})
	}
	return blocks
}

func maxLine(tokens []token.Token) int {
	max := 0
	for _, t := range tokens {
		if int(t.Line) > max {
			max = int(t.Line)
		}
	}
	return max
}
