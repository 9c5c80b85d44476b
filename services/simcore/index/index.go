// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package index builds the fingerprint index for a batch of documents
// and ranks candidate pairs by shared-fingerprint count.
package index

import (
	"sort"

	"github.com/parthenon-labs/simscan/services/simcore/winnow"
)

// Posting links a fingerprint occurrence back to the document it came
// from.
type Posting struct {
	Fingerprint winnow.Fingerprint
	DocIndex    int
}

// Index maps a fingerprint hash to every document posting that
// produced it.
type Index struct {
	postings map[uint64][]Posting
}

// Build inserts every (fingerprint, docIndex) posting from docs, then
// discards the entire posting list for any hash present in
// templateHashes. Template subtraction is coarse: it removes the hash
// for every document, not just the postings contributed by the
// template, so boilerplate shared with the template can never drive a
// ranking even if a submission also happens to reproduce it verbatim
// elsewhere.
func Build(docs [][]winnow.Fingerprint, templateHashes []winnow.Fingerprint) *Index {
	idx := &Index{postings: make(map[uint64][]Posting)}
	for doc, fps := range docs {
		for _, fp := range fps {
			idx.postings[fp.Hash] = append(idx.postings[fp.Hash], Posting{Fingerprint: fp, DocIndex: doc})
		}
	}
	for _, fp := range templateHashes {
		delete(idx.postings, fp.Hash)
	}
	return idx
}

// Postings returns the posting list for hash, or nil if absent.
func (idx *Index) Postings(hash uint64) []Posting {
	return idx.postings[hash]
}

// Len returns the number of distinct fingerprint hashes remaining in
// the index after template subtraction.
func (idx *Index) Len() int {
	return len(idx.postings)
}

// PostingCap is the per-hash posting-list size above which a hash is
// considered too common to discriminate between documents and is
// discarded from scoring entirely.
const PostingCap = 10

// Pair identifies an unordered candidate pair of documents by their
// batch indices, with left < right.
type Pair struct {
	Left, Right int
	Score       int
}

// RankPairs builds the symmetric score matrix described by the
// fingerprint index — for every surviving hash with posting count
// c <= PostingCap, every unordered pair among its c postings gets
// score+1 — and returns the topK highest-scoring unordered pairs,
// highest score first, ties broken by ascending (Left, Right) so the
// result is deterministic.
//
// numDocs must equal the number of documents passed to Build.
func (idx *Index) RankPairs(numDocs, topK int) []Pair {
	scores := newScoreMatrix(numDocs)

	for _, list := range idx.postings {
		if len(list) > PostingCap {
			continue
		}
		for i := 0; i < len(list); i++ {
			for j := i + 1; j < len(list); j++ {
				a, b := list[i].DocIndex, list[j].DocIndex
				if a == b {
					continue
				}
				scores.increment(a, b)
			}
		}
	}

	pairs := scores.pairs()
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Score != pairs[j].Score {
			return pairs[i].Score > pairs[j].Score
		}
		if pairs[i].Left != pairs[j].Left {
			return pairs[i].Left < pairs[j].Left
		}
		return pairs[i].Right < pairs[j].Right
	})

	if topK >= 0 && len(pairs) > topK {
		pairs = pairs[:topK]
	}
	return pairs
}

// scoreMatrix holds pairwise scores for numDocs documents. For small
// batches (numDocs <= denseThreshold) it is a flat dense slice, which
// is simplest and fastest to build; beyond that it switches to a
// sparse map keyed by the packed (left,right) index so memory stays
// proportional to the number of pairs that actually scored rather than
// to numDocs^2.
type scoreMatrix struct {
	numDocs int
	dense   []int
	sparse  map[int64]int
}

// denseThreshold bounds the dense matrix to batches where numDocs^2
// ints comfortably fits in memory (1024^2 ints is 8MB).
const denseThreshold = 1024

func newScoreMatrix(numDocs int) *scoreMatrix {
	if numDocs <= denseThreshold {
		return &scoreMatrix{numDocs: numDocs, dense: make([]int, numDocs*numDocs)}
	}
	return &scoreMatrix{numDocs: numDocs, sparse: make(map[int64]int)}
}

func (m *scoreMatrix) key(a, b int) int64 {
	return int64(a)*int64(m.numDocs) + int64(b)
}

func (m *scoreMatrix) increment(a, b int) {
	if m.dense != nil {
		m.dense[a*m.numDocs+b]++
		m.dense[b*m.numDocs+a]++
		return
	}
	m.sparse[m.key(a, b)]++
	m.sparse[m.key(b, a)]++
}

func (m *scoreMatrix) pairs() []Pair {
	var out []Pair
	if m.dense != nil {
		for i := 0; i < m.numDocs; i++ {
			for j := i + 1; j < m.numDocs; j++ {
				if s := m.dense[i*m.numDocs+j]; s > 0 {
					out = append(out, Pair{Left: i, Right: j, Score: s})
				}
			}
		}
		return out
	}
	seen := make(map[int64]bool)
	for k, s := range m.sparse {
		if s <= 0 {
			continue
		}
		a := int(k / int64(m.numDocs))
		b := int(k % int64(m.numDocs))
		left, right := a, b
		if left > right {
			left, right = right, left
		}
		dedupKey := int64(left)*int64(m.numDocs) + int64(right)
		if seen[dedupKey] {
			continue
		}
		seen[dedupKey] = true
		out = append(out, Pair{Left: left, Right: right, Score: s})
	}
	return out
}
