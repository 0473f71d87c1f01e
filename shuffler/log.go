// Copyright (c) 2025 The fqshuffle developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package shuffler

import "github.com/decred/slog"

// log is the package-level subsystem logger. The default is disabled so
// importing this package has no logging side effects until the caller
// installs a real backend via UseLogger.
var log = slog.Disabled

// UseLogger sets the subsystem logger used by this package. Call with
// slog.Disabled to disable all output.
func UseLogger(logger slog.Logger) {
	log = logger
}
