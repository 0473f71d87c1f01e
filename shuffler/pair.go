// Copyright (c) 2025 The fqshuffle developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package shuffler

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/decred/fqshuffle/internal/bucket"
	"github.com/decred/fqshuffle/internal/recordio"
	"github.com/decred/fqshuffle/internal/rng"
	"github.com/decred/fqshuffle/shuffle"
)

// ceilDiv returns ceil(a/b) for positive b.
func ceilDiv(a, b uint64) uint64 {
	if a == 0 {
		return 0
	}
	return (a-1)/b + 1
}

// numBuckets picks the effective block size and bucket count: given the
// caller's target block size (possibly overridden by a positive
// NumTempFiles), and the maximum combined pair size S across
// all configured pairs, return the effective block size and the number
// of spill buckets K (bucket 0, the in-memory bucket, always exists in
// addition to the K spill buckets).
func numBuckets(s uint64, targetBlockSize uint64, numTempFiles int) (blockSize uint64, k int) {
	blockSize = targetBlockSize
	if numTempFiles > 0 {
		blockSize = ceilDiv(s, uint64(numTempFiles))
	}
	if blockSize == 0 {
		blockSize = 1
	}
	if blockSize >= s {
		return blockSize, 0
	}
	return blockSize, int(ceilDiv(s, blockSize)) - 1
}

// maxPairSize returns the maximum of size(reads[i])+size(mates[i]) over
// every configured pair.
func maxPairSize(reads, mates []string) (uint64, error) {
	var max uint64
	for i := range reads {
		ra, err := os.Stat(reads[i])
		if err != nil {
			return 0, fmt.Errorf("shuffler: stat %s: %w", reads[i], err)
		}
		rb, err := os.Stat(mates[i])
		if err != nil {
			return 0, fmt.Errorf("shuffler: stat %s: %w", mates[i], err)
		}
		total := uint64(ra.Size()) + uint64(rb.Size())
		if total > max {
			max = total
		}
	}
	return max, nil
}

// processPair runs the full distribute-then-permute algorithm for a
// single input pair. It is entirely sequential and blocking; concurrency
// across pairs is the caller's (Shuffler.Run's) concern.
func (s *Shuffler) processPair(ctx context.Context, pairID int, readsPath, matesPath string) error {
	outReadsPath := outputPath(readsPath, s.cfg.OutDir)
	outMatesPath := outputPath(matesPath, s.cfg.OutDir)

	for _, p := range []string{outReadsPath, outMatesPath} {
		if _, err := os.Stat(p); err == nil {
			return fmt.Errorf("shuffler: output file already exists: %s", p)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("shuffler: stat %s: %w", p, err)
		}
	}

	inReads, err := os.Open(readsPath)
	if err != nil {
		return fmt.Errorf("shuffler: opening reads file: %w", err)
	}
	defer inReads.Close()
	inMates, err := os.Open(matesPath)
	if err != nil {
		return fmt.Errorf("shuffler: opening mates file: %w", err)
	}
	defer inMates.Close()

	outReads, err := os.OpenFile(outReadsPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("shuffler: creating output %s: %w", outReadsPath, err)
	}
	defer outReads.Close()
	outMates, err := os.OpenFile(outMatesPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("shuffler: creating output %s: %w", outMatesPath, err)
	}
	defer outMates.Close()

	k := s.k
	spills := make([]*bucket.SpillBucket, k)
	for b := 0; b < k; b++ {
		sb, err := bucket.NewSpillBucket(s.tempDir(), pairID, b+1)
		if err != nil {
			return err
		}
		spills[b] = sb
	}
	defer func() {
		for _, sb := range spills {
			if sb != nil {
				sb.Remove()
			}
		}
	}()

	mem := &bucket.MemBucket{}

	// Distribution pass: draw a bucket id in [0, K+1) for each incoming
	// record. This source is seeded once for the whole pass and is
	// never reused for permutation; each bucket's permutation reseeds
	// independently below.
	distSource, _ := rng.NewSource(s.cfg.Seed)

	reader := recordio.NewReader(inReads, inMates)
	m := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		pair, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		t := int(distSource.DrawIndex(uint64(k + 1)))
		if t == 0 {
			mem.Append(pair.A, pair.B)
		} else if err := spills[t-1].Append(pair.A, pair.B); err != nil {
			return err
		}
		m++
	}
	log.Debugf("Pair %d: distributed %d records across %d buckets", pairID, m, k+1)

	for _, sb := range spills {
		if err := sb.CloseForWrite(); err != nil {
			return err
		}
	}

	writer := recordio.NewWriter(outReads, outMates)

	// Bucket 0 (salt -1) is already resident.
	if err := permuteAndAppend(mem, s.cfg.Seed, -1, writer); err != nil {
		return err
	}

	for b := 0; b < k; b++ {
		if err := spills[b].Load(mem); err != nil {
			return err
		}
		if err := permuteAndAppend(mem, s.cfg.Seed, b, writer); err != nil {
			return err
		}
	}

	return writer.Flush()
}

// permuteAndAppend performs the in-memory Fisher-Yates permutation of
// mem using a source reseeded from seed salted by bucketID (per
// reseedSalt), then appends every record to writer in the post-shuffle
// index order.
func permuteAndAppend(mem *bucket.MemBucket, seed string, bucketID int, writer *recordio.Writer) error {
	src := newBucketSource(seed, bucketID)
	shuffle.Shuffle(src, mem.Len(), func(i, j int) {
		mem.Idx[i], mem.Idx[j] = mem.Idx[j], mem.Idx[i]
	})
	for i := 0; i < mem.Len(); i++ {
		a, b := mem.Record(i)
		if err := writer.Write(recordio.Pair{A: a, B: b}); err != nil {
			return err
		}
	}
	return nil
}
