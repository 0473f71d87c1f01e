// Copyright (c) 2025 The fqshuffle developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rng implements the deterministic, seeded random source that
// drives the bucket distribution and Fisher-Yates permutation passes of
// the shuffler. It is a pure value type: no package-level mutable state
// is kept, so independent goroutines can each own a Source without
// interfering with one another.
package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strconv"
	"time"
)

// Source is a deterministic stream of pseudorandom bits derived from a
// seed string. Given the same seed, the sequence of draws is a pure
// function of draw index.
//
// The stream algorithm repeatedly hashes the decimal ASCII
// representation of a monotonically increasing counter concatenated with
// the previous digest (or the raw seed bytes on the very first block),
// and treats each 32-byte digest as four little-endian uint64 words.
type Source struct {
	counter uint64
	prev    []byte
	waiting []uint64
}

// NewSource installs fresh state seeded with s. If s is empty, the
// current wall-clock second count is used instead, and the effective
// seed string is returned so the caller can log it.
func NewSource(s string) (*Source, string) {
	if s == "" {
		s = strconv.FormatInt(time.Now().Unix(), 10)
	}
	return &Source{prev: []byte(s)}, s
}

// fill computes the next SHA-256 block and appends its four
// little-endian uint64 words to the waiting queue.
func (s *Source) fill() {
	h := sha256.New()
	h.Write([]byte(strconv.FormatUint(s.counter, 10)))
	h.Write(s.prev)
	block := h.Sum(nil)
	s.counter++
	s.prev = block

	words := make([]uint64, len(block)/8)
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(block[i*8 : i*8+8])
	}
	s.waiting = append(s.waiting, words...)
}

// nextUint64 consumes the next raw 64-bit word from the stream.
func (s *Source) nextUint64() uint64 {
	if len(s.waiting) == 0 {
		s.fill()
	}
	u := s.waiting[0]
	s.waiting = s.waiting[1:]
	return u
}

// DrawFloat64 draws one 64-bit unsigned integer from the stream and
// returns u / 2^64, a value in [0, 1).
func (s *Source) DrawFloat64() float64 {
	u := s.nextUint64()
	f := float64(u) / (1 << 64)
	// float64(u) rounds up to 2^64 for u within 2^10 of the maximum;
	// keep the result below 1.
	if f >= 1 {
		f = math.Nextafter(1, 0)
	}
	return f
}

// DrawIndex returns floor(n * DrawFloat64()), a value in [0, n).
// DrawIndex(0) is undefined behavior upstream of this call and is never
// invoked by the shuffler with n == 0.
func (s *Source) DrawIndex(n uint64) uint64 {
	idx := uint64(float64(n) * s.DrawFloat64())
	// float64 rounding can push n*f up to exactly n even though f < 1;
	// the true product is always below n, so the floor must stay in range.
	if idx >= n {
		idx = n - 1
	}
	return idx
}
