// Copyright (c) 2025 The fqshuffle developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package bucket implements the partition store used by the
// external-memory shuffle: one in-memory bucket plus any number of
// on-disk spill buckets, each holding an ordered sequence of record
// pairs and an index locating them within a contiguous data blob.
//
// A spill bucket owns a ".data" file (the raw concatenation of each
// pair's bytes, in arrival order) and a ".index" file (the packed
// (offset, lenA, lenB) triples in the same order) -- the same
// partition-file-pair convention used by on-disk external sorts.
package bucket

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// entrySize is the packed byte size of one index triple: an 8-byte
// little-endian offset, a 4-byte little-endian lenA, and a 4-byte
// little-endian lenB.
const entrySize = 8 + 4 + 4

// Entry locates one record pair within a bucket's contiguous byte
// buffer: A occupies [Offset, Offset+LenA), B occupies
// [Offset+LenA, Offset+LenA+LenB).
type Entry struct {
	Offset uint64
	LenA   uint32
	LenB   uint32
}

func putEntry(dst []byte, e Entry) {
	binary.LittleEndian.PutUint64(dst[0:8], e.Offset)
	binary.LittleEndian.PutUint32(dst[8:12], e.LenA)
	binary.LittleEndian.PutUint32(dst[12:16], e.LenB)
}

func getEntry(src []byte) Entry {
	return Entry{
		Offset: binary.LittleEndian.Uint64(src[0:8]),
		LenA:   binary.LittleEndian.Uint32(src[8:12]),
		LenB:   binary.LittleEndian.Uint32(src[12:16]),
	}
}

// MemBucket is the in-memory bucket (bucket id 0): a growable byte
// buffer plus a parallel index slice.
type MemBucket struct {
	Buf []byte
	Idx []Entry
}

// Append adds a record pair to the end of the bucket.
func (m *MemBucket) Append(a, b []byte) {
	off := uint64(len(m.Buf))
	m.Idx = append(m.Idx, Entry{Offset: off, LenA: uint32(len(a)), LenB: uint32(len(b))})
	m.Buf = append(m.Buf, a...)
	m.Buf = append(m.Buf, b...)
}

// Len returns the number of record pairs currently held.
func (m *MemBucket) Len() int { return len(m.Idx) }

// Record returns the A and B slices for index entry i. The returned
// slices alias m.Buf and must not be retained past the next mutation of
// the bucket.
func (m *MemBucket) Record(i int) (a, b []byte) {
	e := m.Idx[i]
	a = m.Buf[e.Offset : e.Offset+uint64(e.LenA)]
	b = m.Buf[e.Offset+uint64(e.LenA) : e.Offset+uint64(e.LenA)+uint64(e.LenB)]
	return a, b
}

// Reset empties the bucket so it can be reused for the next spill load.
func (m *MemBucket) Reset() {
	m.Buf = m.Buf[:0]
	m.Idx = m.Idx[:0]
}

// SpillBucket is an on-disk bucket (bucket ids 1..K): a pair of files
// opened for sequential append, named uniquely per bucket within a
// caller-supplied temp directory.
type SpillBucket struct {
	dataPath, indexPath string
	dataFile            *os.File
	indexFile           *os.File
	dataWriter          *bufio.Writer
	indexWriter         *bufio.Writer
	offset              uint64
	count               int
}

// NewSpillBucket creates a fresh pair of spill files for bucket id id
// belonging to input pair pairID, inside dir.
func NewSpillBucket(dir string, pairID, id int) (*SpillBucket, error) {
	dataPath := filepath.Join(dir, fmt.Sprintf("fq-shuffle-%d-%d.data", pairID, id))
	indexPath := filepath.Join(dir, fmt.Sprintf("fq-shuffle-%d-%d.index", pairID, id))

	dataFile, err := os.OpenFile(dataPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("bucket: creating spill data file: %w", err)
	}
	indexFile, err := os.OpenFile(indexPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		dataFile.Close()
		return nil, fmt.Errorf("bucket: creating spill index file: %w", err)
	}

	return &SpillBucket{
		dataPath:    dataPath,
		indexPath:   indexPath,
		dataFile:    dataFile,
		indexFile:   indexFile,
		dataWriter:  bufio.NewWriter(dataFile),
		indexWriter: bufio.NewWriter(indexFile),
	}, nil
}

// Append writes one record pair to the spill bucket.
func (s *SpillBucket) Append(a, b []byte) error {
	e := Entry{Offset: s.offset, LenA: uint32(len(a)), LenB: uint32(len(b))}
	s.offset += uint64(len(a)) + uint64(len(b))
	s.count++

	if _, err := s.dataWriter.Write(a); err != nil {
		return fmt.Errorf("bucket: writing spill data: %w", err)
	}
	if _, err := s.dataWriter.Write(b); err != nil {
		return fmt.Errorf("bucket: writing spill data: %w", err)
	}
	var packed [entrySize]byte
	putEntry(packed[:], e)
	if _, err := s.indexWriter.Write(packed[:]); err != nil {
		return fmt.Errorf("bucket: writing spill index: %w", err)
	}
	return nil
}

// Count returns the number of record pairs appended so far.
func (s *SpillBucket) Count() int { return s.count }

// CloseForWrite flushes and closes the bucket's write handles. It must
// be called before Load.
func (s *SpillBucket) CloseForWrite() error {
	if err := s.dataWriter.Flush(); err != nil {
		return fmt.Errorf("bucket: flushing spill data: %w", err)
	}
	if err := s.indexWriter.Flush(); err != nil {
		return fmt.Errorf("bucket: flushing spill index: %w", err)
	}
	if err := s.dataFile.Close(); err != nil {
		return fmt.Errorf("bucket: closing spill data: %w", err)
	}
	if err := s.indexFile.Close(); err != nil {
		return fmt.Errorf("bucket: closing spill index: %w", err)
	}
	return nil
}

// Load reads the entire spill data file into dst.Buf and decodes the
// index file into dst.Idx, replacing dst's previous contents. The spill
// files are no longer needed afterward and may be removed by the
// caller via Remove.
func (s *SpillBucket) Load(dst *MemBucket) error {
	dst.Reset()

	data, err := os.ReadFile(s.dataPath)
	if err != nil {
		return fmt.Errorf("bucket: reading spill data: %w", err)
	}
	dst.Buf = append(dst.Buf, data...)

	raw, err := os.ReadFile(s.indexPath)
	if err != nil {
		return fmt.Errorf("bucket: reading spill index: %w", err)
	}
	if len(raw)%entrySize != 0 {
		return fmt.Errorf("bucket: spill index %s has truncated trailing entry", s.indexPath)
	}
	n := len(raw) / entrySize
	dst.Idx = make([]Entry, n)
	for i := 0; i < n; i++ {
		dst.Idx[i] = getEntry(raw[i*entrySize : (i+1)*entrySize])
	}
	return nil
}

// Remove deletes both spill files. Errors are collected but removal
// continues for the second file so a failure on one doesn't leak the
// other.
func (s *SpillBucket) Remove() error {
	err1 := os.Remove(s.dataPath)
	err2 := os.Remove(s.indexPath)
	if err1 != nil {
		return err1
	}
	return err2
}
