// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package winnow implements the SIGMOD'03 winnowing algorithm over a
// token-kind stream: a rolling Karp-Rabin checksum per n-gram, mixed
// through a 64-bit hash, windowed down to one fingerprint per window
// via the rightmost-minimum rule.
package winnow

import (
	"github.com/cespare/xxhash/v2"
)

// Fingerprint is a single winnowed content hash and the token-stream
// offset of the n-gram it summarizes.
type Fingerprint struct {
	Hash   uint64
	Offset int
}

// adlerMod is the modulus for the Adler-32-style rolling checksum. It
// is deliberately small and non-cryptographic: the spec only requires
// that the rolling checksum be cheap to update incrementally, since
// the 64-bit mix afterward is what actually carries the comparison and
// indexing guarantees.
const adlerMod = 65521

// rollingChecksums computes the Adler-32-style checksum of every
// contiguous n-gram of length noise in kinds, returning one checksum
// per valid starting offset (len(kinds)-noise+1 total, or none if the
// stream is shorter than noise).
func rollingChecksums(kinds []byte, noise int) []uint32 {
	n := len(kinds)
	if noise <= 0 || n < noise {
		return nil
	}
	out := make([]uint32, n-noise+1)

	var a, b uint32
	for i := 0; i < noise; i++ {
		a = (a + uint32(kinds[i])) % adlerMod
		b = (b + a) % adlerMod
	}
	out[0] = (b << 16) | a

	for i := 1; i <= n-noise; i++ {
		leaving := uint32(kinds[i-1])
		entering := uint32(kinds[i+noise-1])
		a = (a + adlerMod - leaving%adlerMod + entering) % adlerMod
		b = (b + adlerMod - (uint32(noise)*leaving)%adlerMod + a) % adlerMod
		out[i] = (b << 16) | a
	}
	return out
}

// contentHashes mixes each rolling checksum through xxhash so that the
// known non-uniformity of the Adler family does not bias which
// fingerprints end up selected or how often hashes collide in the
// index.
func contentHashes(kinds []byte, noise int) []uint64 {
	checksums := rollingChecksums(kinds, noise)
	hashes := make([]uint64, len(checksums))
	var buf [4]byte
	for i, c := range checksums {
		buf[0] = byte(c)
		buf[1] = byte(c >> 8)
		buf[2] = byte(c >> 16)
		buf[3] = byte(c >> 24)
		hashes[i] = xxhash.Sum64(buf[:])
	}
	return hashes
}

// Winnow runs the full winnowing algorithm: rolling hash each n-gram of
// length noise, then slide a window of size guarantee-noise+1 over the
// resulting content hashes, emitting the rightmost minimum of each
// window.
//
// Streams shorter than noise tokens produce no fingerprints. guarantee
// must be >= noise; Params.Validate in the coordinate package enforces
// this before Winnow is ever called.
func Winnow(kinds []byte, noise, guarantee int) []Fingerprint {
	hashes := contentHashes(kinds, noise)
	if len(hashes) == 0 {
		return nil
	}

	windowSize := guarantee - noise + 1
	if windowSize < 1 {
		windowSize = 1
	}
	if windowSize > len(hashes) {
		windowSize = len(hashes)
	}

	var out []Fingerprint
	lastEmittedPos := -1

	for start := 0; start+windowSize <= len(hashes); start++ {
		minPos := start
		for p := start + 1; p < start+windowSize; p++ {
			if hashes[p] <= hashes[minPos] {
				minPos = p
			}
		}
		if minPos != lastEmittedPos {
			out = append(out, Fingerprint{Hash: hashes[minPos], Offset: minPos})
			lastEmittedPos = minPos
		}
	}
	return out
}

// AllFingerprints emits the content hash at every position with no
// windowing. It is used only to build the template-exclusion set,
// where recall (not sparsity) is what matters.
func AllFingerprints(kinds []byte, noise int) []Fingerprint {
	hashes := contentHashes(kinds, noise)
	out := make([]Fingerprint, len(hashes))
	for i, h := range hashes {
		out[i] = Fingerprint{Hash: h, Offset: i}
	}
	return out
}
