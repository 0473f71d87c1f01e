// Copyright (c) 2018 The Decred developers
// Copyright (c) 2025 The fqshuffle developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"runtime"

	"github.com/decred/fqshuffle/shuffler"
	"github.com/decred/fqshuffle/version"
)

func main() {
	// Create a context that is cancelled when a shutdown request is
	// received through an interrupt signal.
	ctx := withShutdownCancel(context.Background())

	if err := run(ctx); err != nil && err != context.Canceled {
		os.Exit(1)
	}
}

// done returns whether ctx's Done channel was closed due to
// cancellation or an exceeded deadline.
func done(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// run loads configuration, builds the shuffler, and drives it to
// completion, funneling every fatal error through a single point so
// temp files are always cleaned up before exit.
func run(ctx context.Context) error {
	_, scfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	log.Infof("Version %s (Go version %s)", version.String(), runtime.Version())

	if done(ctx) {
		return ctx.Err()
	}

	// Every spill file lives under a private temp root that is removed
	// recursively on exit, success or failure.
	tempRoot, err := os.MkdirTemp(scfg.TempDir, "fqshuffle-")
	if err != nil {
		log.Errorf("Unable to create temp directory: %v", err)
		return err
	}
	defer os.RemoveAll(tempRoot)
	scfg.TempDir = tempRoot

	s, err := shuffler.NewShuffler(*scfg)
	if err != nil {
		log.Errorf("%v", err)
		return err
	}

	if err := s.Run(ctx); err != nil {
		if err == context.Canceled {
			log.Warn("Shuffle cancelled")
		} else {
			log.Errorf("Shuffle failed: %v", err)
		}
		return err
	}

	log.Info("Shuffle complete")
	return nil
}
