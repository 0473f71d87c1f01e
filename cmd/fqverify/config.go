// Copyright (c) 2025 The fqshuffle developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/decred/fqshuffle/version"
	flags "github.com/jessevdk/go-flags"
)

// config mirrors the flag shape of the shuffler's own -1/-2 reads/mates
// pair, but in "original vs. shuffled" terms rather than "reads vs.
// mates" terms.
type config struct {
	ShowVersion bool     `short:"V" long:"version" description:"Display version information and exit"`
	Original    []string `short:"1" long:"original" description:"Original input file; comma-separated list, may repeat"`
	Shuffled    []string `short:"2" long:"shuffled" description:"Corresponding .shuffled output file; comma-separated list, may repeat"`

	MatesOriginal []string `long:"mates-original" description:"Original mate (R2) input file, for pairing-integrity checks"`
	MatesShuffled []string `long:"mates-shuffled" description:"Corresponding shuffled mate (R2) output file"`
}

func splitCommaList(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, part := range strings.Split(v, ",") {
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func loadConfig() (*config, error) {
	var cfg config
	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, err
	}

	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	if cfg.ShowVersion {
		fmt.Printf("%s version v%s (Go version %s)\n", appName, version.String(), runtime.Version())
		os.Exit(0)
	}

	cfg.Original = splitCommaList(cfg.Original)
	cfg.Shuffled = splitCommaList(cfg.Shuffled)
	cfg.MatesOriginal = splitCommaList(cfg.MatesOriginal)
	cfg.MatesShuffled = splitCommaList(cfg.MatesShuffled)

	if len(cfg.Original) == 0 || len(cfg.Shuffled) == 0 {
		fmt.Fprintln(os.Stderr, "required parameters are --original and --shuffled")
		parser.WriteHelp(os.Stderr)
		return nil, fmt.Errorf("required parameters are --original and --shuffled")
	}
	if len(cfg.Original) != len(cfg.Shuffled) {
		fmt.Fprintln(os.Stderr, "ERROR Number of original and shuffled files are different")
		return nil, fmt.Errorf("ERROR Number of original and shuffled files are different")
	}
	if len(cfg.MatesOriginal) != len(cfg.MatesShuffled) {
		fmt.Fprintln(os.Stderr, "ERROR Number of mates-original and mates-shuffled files are different")
		return nil, fmt.Errorf("ERROR Number of mates-original and mates-shuffled files are different")
	}

	return &cfg, nil
}
