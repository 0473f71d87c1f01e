// Copyright (c) 2025 The fqshuffle developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package recordio

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) *os.File {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

const quartet = "@r1\nACGT\n+\n!!!!\n"

func TestReadLockstep(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.fq", quartet+quartet)
	b := writeTempFile(t, dir, "b.fq", quartet+quartet)

	r := NewReader(a, b)
	for i := 0; i < 2; i++ {
		p, err := r.Next()
		if err != nil {
			t.Fatalf("pair %d: %v", i, err)
		}
		if string(p.A) != quartet || string(p.B) != quartet {
			t.Fatalf("pair %d: unexpected content", i)
		}
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestTruncatedMidQuartet(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.fq", quartet)
	b := writeTempFile(t, dir, "b.fq", "@r1\nACGT\n")

	r := NewReader(a, b)
	if _, err := r.Next(); err != ErrTruncatedRecord {
		t.Fatalf("expected ErrTruncatedRecord, got %v", err)
	}
}

func TestUnequalRecordCounts(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.fq", quartet+quartet)
	b := writeTempFile(t, dir, "b.fq", quartet)

	r := NewReader(a, b)
	if _, err := r.Next(); err != nil {
		t.Fatalf("first pair should succeed: %v", err)
	}
	if _, err := r.Next(); err != ErrTruncatedRecord {
		t.Fatalf("expected ErrTruncatedRecord on second pair, got %v", err)
	}
}

func TestEmptyInputs(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.fq", "")
	b := writeTempFile(t, dir, "b.fq", "")

	r := NewReader(a, b)
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF on empty inputs, got %v", err)
	}
}

func TestWriteAppendsInOrder(t *testing.T) {
	dir := t.TempDir()
	outA, err := os.Create(filepath.Join(dir, "out.a"))
	if err != nil {
		t.Fatal(err)
	}
	outB, err := os.Create(filepath.Join(dir, "out.b"))
	if err != nil {
		t.Fatal(err)
	}

	w := NewWriter(outA, outB)
	if err := w.Write(Pair{A: []byte("AAA\n"), B: []byte("BBB\n")}); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	outA.Close()
	outB.Close()

	gotA, _ := os.ReadFile(filepath.Join(dir, "out.a"))
	gotB, _ := os.ReadFile(filepath.Join(dir, "out.b"))
	if string(gotA) != "AAA\n" || string(gotB) != "BBB\n" {
		t.Fatalf("unexpected output content: %q %q", gotA, gotB)
	}
}
