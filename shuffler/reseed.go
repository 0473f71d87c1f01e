// Copyright (c) 2025 The fqshuffle developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package shuffler

import (
	"strconv"

	"github.com/decred/fqshuffle/internal/rng"
)

// reseedSalt derives the per-bucket seed string by concatenating the
// base seed with the literal decimal bucket id, -1 for the in-memory
// bucket and 0..K-1 for spill buckets. This exact string-concatenation
// scheme (rather than, say, hashing seed and id together) is preserved
// verbatim so permutations are bit-identical to the source tool's
// outputs: the permutation of a bucket becomes a pure function of
// (seed, bucket id), independent of how many RNG draws the distribution
// pass happened to consume.
func reseedSalt(seed string, bucket int) string {
	return seed + strconv.Itoa(bucket)
}

// newBucketSource reseeds a fresh RNG source for the given bucket id.
func newBucketSource(seed string, bucket int) *rng.Source {
	src, _ := rng.NewSource(reseedSalt(seed, bucket))
	return src
}
