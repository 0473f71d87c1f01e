// Copyright (c) 2025 The fqshuffle developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/decred/fqshuffle/internal/recordio"
	"golang.org/x/crypto/blake2s"
)

// verifyResult holds the outcome of comparing one original file against
// its shuffled counterpart.
type verifyResult struct {
	OriginalCount int
	ShuffledCount int
	MultisetEqual bool
	Digest        [32]byte
}

// verifyPair reads both files fully, checks that the shuffled file's
// records are exactly a permutation of the original's, and computes a
// blake2s-256 digest over the
// sorted record list. Because the digest is taken after sorting, it is
// invariant under any permutation of a fixed multiset: two files holding
// the same multiset of records always print the same digest, so the
// digest itself doubles as a human-checkable multiset fingerprint.
func verifyPair(originalPath, shuffledPath string) (verifyResult, error) {
	original, err := readRecords(originalPath)
	if err != nil {
		return verifyResult{}, err
	}
	shuffled, err := readRecords(shuffledPath)
	if err != nil {
		return verifyResult{}, err
	}

	res := verifyResult{
		OriginalCount: len(original),
		ShuffledCount: len(shuffled),
	}
	res.MultisetEqual = multisetEqual(original, shuffled)
	res.Digest = sortedDigest(shuffled)
	return res, nil
}

// readRecords reads every four-line record from path.
func readRecords(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	recs, err := recordio.ReadAllQuartets(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return recs, nil
}

// multisetEqual reports whether a and b hold the same multiset of
// records, ignoring order.
func multisetEqual(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	sa := sortedCopy(a)
	sb := sortedCopy(b)
	for i := range sa {
		if !bytes.Equal(sa[i], sb[i]) {
			return false
		}
	}
	return true
}

func sortedCopy(recs [][]byte) [][]byte {
	out := make([][]byte, len(recs))
	copy(out, recs)
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i], out[j]) < 0 })
	return out
}

// sortedDigest hashes the sorted record list with blake2s-256.
func sortedDigest(recs [][]byte) [32]byte {
	sorted := sortedCopy(recs)
	h, _ := blake2s.New256(nil)
	for _, r := range sorted {
		h.Write(r)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// printResult prints a one-line human-readable summary for one
// original/shuffled file pair.
func printResult(originalPath, shuffledPath string, res verifyResult) {
	status := "OK"
	if !res.MultisetEqual {
		status = "MULTISET MISMATCH"
	}
	fmt.Printf("%s -> %s: %d records, digest %x: %s\n",
		originalPath, shuffledPath, res.ShuffledCount, res.Digest, status)
}
