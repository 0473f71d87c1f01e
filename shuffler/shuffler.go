// Copyright (c) 2018 The Decred developers
// Copyright (c) 2025 The fqshuffle developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package shuffler implements the distribution pass (C5) and the
// shuffle driver (C6) of the two-pass external-memory shuffle: for each
// input pair it assigns every record to a bucket uniformly at random,
// then permutes and appends each bucket's records to the outputs in
// bucket-id order.
package shuffler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/decred/fqshuffle/internal/rng"
	"golang.org/x/sync/errgroup"
)

// Config describes the full set of inputs a Shuffler needs; it is the
// core's only contract with the CLI layer (argument parsing, size-string
// parsing, and path defaulting all happen upstream of this struct).
type Config struct {
	// Reads and Mates are equal-length ordered lists of input paths.
	Reads, Mates []string

	// BlockSizeBytes is the caller's target per-bucket byte footprint.
	BlockSizeBytes uint64

	// NumTempFiles overrides BlockSizeBytes when positive: the block
	// size becomes ceil(maxPairBytes / NumTempFiles). Zero means "let
	// BlockSizeBytes decide".
	NumTempFiles int

	// TempDir is the directory spill files are created in. Empty means
	// the system default temp directory.
	TempDir string

	// OutDir is the directory outputs are written to. Empty means
	// alongside each input file.
	OutDir string

	// Seed is the RNG seed string. Empty means the current wall-clock
	// second count, chosen once per Shuffler and shared by every pair
	// (each pair further salts it per bucket, see reseedSalt).
	Seed string
}

// Shuffler orchestrates the independent processing of every configured
// input pair.
type Shuffler struct {
	cfg Config

	// blockSize and k are derived once from every configured pair's
	// combined size, using the largest pair to pick a bucket count,
	// and shared by every pair so they all spill into the same number
	// of buckets.
	blockSize uint64
	k         int
}

// NewShuffler validates cfg, derives the shared bucket count, and
// returns a ready-to-run Shuffler. The effective seed (resolved from
// wall-clock time if cfg.Seed is empty) is fixed once here so every pair
// salts from the same base string, and is logged for reproducibility.
func NewShuffler(cfg Config) (*Shuffler, error) {
	if len(cfg.Reads) == 0 || len(cfg.Mates) == 0 {
		return nil, fmt.Errorf("shuffler: required parameter are --reads and --mates")
	}
	if len(cfg.Reads) != len(cfg.Mates) {
		return nil, fmt.Errorf("shuffler: ERROR Number of first and second read files are different")
	}
	if cfg.BlockSizeBytes == 0 {
		return nil, fmt.Errorf("shuffler: block size must be positive")
	}

	s, err := maxPairSize(cfg.Reads, cfg.Mates)
	if err != nil {
		return nil, err
	}
	blockSize, k := numBuckets(s, cfg.BlockSizeBytes, cfg.NumTempFiles)
	log.Infof("Combined input size %d bytes, block size %d bytes, %d spill bucket(s)", s, blockSize, k)

	_, effectiveSeed := rng.NewSource(cfg.Seed)
	cfg.Seed = effectiveSeed
	log.Infof("Effective seed: %s", effectiveSeed)

	return &Shuffler{cfg: cfg, blockSize: blockSize, k: k}, nil
}

// Run processes every configured pair to completion. Each pair's own
// five-step algorithm (seed, distribute, close spills, permute each
// bucket, append) runs sequentially on its own goroutine; independent
// pairs are fanned out concurrently via an errgroup, since each pair's
// shuffle is independent of every other pair's.
func (s *Shuffler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := range s.cfg.Reads {
		i := i
		g.Go(func() error {
			return s.processPair(ctx, i, s.cfg.Reads[i], s.cfg.Mates[i])
		})
	}
	return g.Wait()
}

// outputPath derives the "<input>.shuffled" output path for input,
// placing it in outDir if set, otherwise alongside input.
func outputPath(input, outDir string) string {
	name := filepath.Base(input) + ".shuffled"
	if outDir != "" {
		return filepath.Join(outDir, name)
	}
	return filepath.Join(filepath.Dir(input), name)
}

// tempDir returns the configured spill directory, or the system default.
func (s *Shuffler) tempDir() string {
	if s.cfg.TempDir != "" {
		return s.cfg.TempDir
	}
	return os.TempDir()
}
