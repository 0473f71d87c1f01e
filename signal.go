// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2018 The Decred developers
// Copyright (c) 2025 The fqshuffle developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// interruptSignals is the list of signals that trigger a graceful
// shutdown request. SIGTERM is included so the tool behaves well under
// process supervisors and container orchestrators, not just interactive
// Ctrl-C.
var interruptSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// withShutdownCancel returns a copy of ctx that is cancelled when an
// interrupt signal is received. A second signal forces an immediate
// os.Exit(1) so a stuck spill or permute phase can't wedge the process.
func withShutdownCancel(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, interruptSignals...)
	go func() {
		<-sigCh
		log.Warn("Received shutdown signal, finishing current bucket then exiting")
		cancel()
		<-sigCh
		log.Warn("Received second shutdown signal, exiting immediately")
		os.Exit(1)
	}()
	return ctx
}
