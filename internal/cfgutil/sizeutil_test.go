// Copyright (c) 2025 The fqshuffle developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cfgutil

import "testing"

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"1024", 1024},
		{"1K", 1024},
		{"2kB", 2048},
		{"50M", 50 << 20},
		{"1G", 1 << 30},
		{"1g", 1 << 30},
		{"1GiB", 1 << 30},
		{"1.5GiB", 1610612736},
		{"3P", 3 << 50},
		{" 1 G ", 1 << 30},
		{"0", 0},
	}
	for _, test := range tests {
		got, err := ParseByteSize(test.in)
		if err != nil {
			t.Errorf("ParseByteSize(%q): unexpected error: %v", test.in, err)
			continue
		}
		if got != test.want {
			t.Errorf("ParseByteSize(%q) = %d, want %d", test.in, got, test.want)
		}
	}
}

func TestParseByteSizeRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "auto", "-5M", "1T", "G", "1.2.3K", "1 2G"} {
		if _, err := ParseByteSize(in); err == nil {
			t.Errorf("ParseByteSize(%q): expected error, got none", in)
		}
	}
}
