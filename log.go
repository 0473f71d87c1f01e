// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2018 The Decred developers
// Copyright (c) 2025 The fqshuffle developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/decred/fqshuffle/shuffler"
	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// logRotator is the log file rotator used by all subsystem loggers; it
// stays nil until initLogRotator has been called, and is closed once by
// main on exit.
var logRotator *rotator.Rotator

// backendLog is the logging backend all subsystem loggers fan into.
var backendLog = slog.NewBackend(logWriter{})

// logWriter implements io.Writer and fans log output out to both
// os.Stderr (informational progress lines belong on standard error, not
// mixed into shuffled output on stdout) and the rotating log file, once
// initialized.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stderr.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

// mainLog is the subsystem logger for the top-level entry point; other
// packages each expose a UseLogger(slog.Logger) hook set from here.
var mainLog = backendLog.Logger("MAIN")

// log is the package-wide alias for mainLog, used as a bare identifier
// throughout the main package.
var log = mainLog

// shuffleLog is the subsystem logger handed to the shuffler package.
var shuffleLog = backendLog.Logger("SHFL")

// subsystemLoggers maps each subsystem identifier to its logger so
// --debuglevel=subsys=level syntax can target loggers individually.
var subsystemLoggers = map[string]slog.Logger{
	"MAIN": mainLog,
	"SHFL": shuffleLog,
}

func init() {
	shuffler.UseLogger(shuffleLog)
}

// initLogRotator initializes the logging rotator to write logs to
// logFile and creates the parent directory as needed.
func initLogRotator(logFile string) {
	logDir, _ := filepath.Split(logFile)
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory: %v\n", err)
			os.Exit(1)
		}
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create file rotator: %v\n", err)
		os.Exit(1)
	}
	logRotator = r
}

// setLogLevel sets the logging level for provided subsystem. Invalid
// subsystems are ignored.
func setLogLevel(subsysID string, logLevel string) {
	logger, ok := subsystemLoggers[subsysID]
	if !ok {
		return
	}
	level, _ := slog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// setLogLevels sets the log level for all subsystem loggers to the
// passed level.
func setLogLevels(logLevel string) {
	level, _ := slog.LevelFromString(logLevel)
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
}
