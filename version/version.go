// Copyright (c) 2016 The btcsuite developers
// Copyright (c) 2025 The fqshuffle developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package version provides the semantic version string reported by
// --version and logged at startup.
package version

import "fmt"

const (
	// Major, Minor, and Patch are the application semantic version
	// numbers, respectively.
	Major = 1
	Minor = 0
	Patch = 0
)

// String returns the application semantic version string.
func String() string {
	return fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)
}
