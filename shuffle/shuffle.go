// Copyright 2009 The Go Authors. All rights reserved.
// Copyright (c) 2018 The Decred developers
// Copyright (c) 2025 The fqshuffle developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package shuffle implements the in-memory permutation step of the
// external-memory shuffle: a Fisher-Yates shuffle over a bucket's index,
// driven by a deterministic rng.Source rather than a generic io.Reader.
//
// Note the draw range is [0, i), not the classical [0, i]: this
// reproduces the source tool's exact permutation (and its golden MD5
// outputs) at the cost of uniformity: the walk never leaves an element at
// its original position, so only the (n-1)! cyclic orderings can occur.
// See DESIGN.md for the open-question discussion.
package shuffle

import "github.com/decred/fqshuffle/internal/rng"

// Shuffle pseudo-randomizes the order of n elements in place, calling
// swap(i, j) for each transposition chosen by the Fisher-Yates walk.
// Shuffle panics if n is negative; n == 0 or n == 1 is a no-op.
func Shuffle(source *rng.Source, n int, swap func(i, j int)) {
	if n < 0 {
		panic("shuffle: invalid argument to Shuffle")
	}

	for i := n - 1; i >= 1; i-- {
		j := int(source.DrawIndex(uint64(i)))
		swap(i, j)
	}
}
