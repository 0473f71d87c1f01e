// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2017 The Decred developers
// Copyright (c) 2025 The fqshuffle developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/decred/fqshuffle/internal/cfgutil"
	"github.com/decred/fqshuffle/shuffler"
	"github.com/decred/fqshuffle/version"
	"github.com/decred/slog"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "fqshuffle.conf"
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "fqshuffle.log"
	defaultNumTempFiles   = "auto"
	defaultBlockSize      = "1G"
)

var (
	defaultAppDataDir = appDataDir("fqshuffle")
	defaultConfigFile = filepath.Join(defaultAppDataDir, defaultConfigFilename)
	defaultLogDir     = filepath.Join(defaultAppDataDir, defaultLogDirname)
)

// cleanAndExpandPath expands environment variables and a leading ~ in
// path, then cleans the result.
func cleanAndExpandPath(path string) string {
	path = os.ExpandEnv(path)
	if !strings.HasPrefix(path, "~") {
		return filepath.Clean(path)
	}

	rest := path[1:]
	var pathSeparators string
	if runtime.GOOS == "windows" {
		pathSeparators = string(os.PathSeparator) + "/"
	} else {
		pathSeparators = string(os.PathSeparator)
	}

	userName := ""
	if i := strings.IndexAny(rest, pathSeparators); i != -1 {
		userName = rest[:i]
		rest = rest[i:]
	}

	homeDir := ""
	var u *user.User
	var err error
	if userName == "" {
		u, err = user.Current()
	} else {
		u, err = user.Lookup(userName)
	}
	if err == nil {
		homeDir = u.HomeDir
	}
	if homeDir == "" {
		homeDir = "."
	}
	return filepath.Join(homeDir, rest)
}

// appDataDir returns the default per-user application data directory
// for name, preferring os.UserConfigDir and falling back to the current
// directory if the platform doesn't expose one.
func appDataDir(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", name)
	}
	return filepath.Join(dir, name)
}

// config holds every value the CLI layer is responsible for collecting
// before handing off to shuffler.Config.
type config struct {
	ConfigFile  *cfgutil.ExplicitString `short:"C" long:"configfile" description:"Path to configuration file"`
	ShowVersion bool                    `short:"V" long:"version" description:"Display version information and exit"`
	LogDir      *cfgutil.ExplicitString `long:"logdir" description:"Directory to log output"`
	DebugLevel  string                  `long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}, or subsys=level,subsys=level pairs"`
	Verbose     []bool                  `short:"v" description:"Increase logging verbosity; may be repeated"`
	Debug       bool                    `short:"D" long:"debug" description:"Shorthand for the most verbose (trace) logging level"`

	Reads        []string `short:"1" long:"reads" description:"First-read (R1) input file; comma-separated list, may be repeated"`
	Mates        []string `short:"2" long:"mates" description:"Second-read (R2) input file; comma-separated list, may be repeated"`
	NumTempFiles string   `short:"t" long:"num-temp-files" default:"auto" description:"Number of spill files, or \"auto\" to derive from --shuffle-block-size"`
	BlockSize    string   `short:"s" long:"shuffle-block-size" default:"1G" description:"Target per-bucket byte footprint, e.g. 1G, 512M, 1.5GiB"`
	TempDir      string   `short:"d" long:"temp-directory" description:"Directory for spill files (default: system temp directory)"`
	Seed         string   `short:"r" long:"seed" description:"RNG seed string (default: current wall-clock seconds)"`
	OutDir       string   `short:"o" long:"outdir" description:"Directory for shuffled output files (default: alongside each input)"`
}

// randomSeedAliasArgs rewrites the deprecated --randomseed spelling to
// --seed before go-flags ever sees it, so both spellings resolve to the
// same field without a second struct tag (go-flags doesn't support
// multiple long names on one field).
func randomSeedAliasArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		switch {
		case a == "--randomseed":
			out[i] = "--seed"
		case strings.HasPrefix(a, "--randomseed="):
			out[i] = "--seed=" + strings.TrimPrefix(a, "--randomseed=")
		default:
			out[i] = a
		}
	}
	return out
}

// supportedSubsystems returns a sorted slice of the supported subsystems
// for logging purposes.
func supportedSubsystems() []string {
	subsystems := make([]string, 0, len(subsystemLoggers))
	for subsysID := range subsystemLoggers {
		subsystems = append(subsystems, subsysID)
	}
	sort.Strings(subsystems)
	return subsystems
}

func validLogLevel(logLevel string) bool {
	_, ok := slog.LevelFromString(logLevel)
	return ok
}

// parseAndSetDebugLevels parses either a single level applied to every
// subsystem, or a comma-separated list of subsys=level pairs.
func parseAndSetDebugLevels(debugLevel string) error {
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		if !validLogLevel(debugLevel) {
			return fmt.Errorf("the specified debug level [%v] is invalid", debugLevel)
		}
		setLogLevels(debugLevel)
		return nil
	}

	for _, pair := range strings.Split(debugLevel, ",") {
		fields := strings.SplitN(pair, "=", 2)
		if len(fields) != 2 {
			return fmt.Errorf("the specified debug level contains an invalid subsystem/level pair [%v]", pair)
		}
		subsysID, logLevel := fields[0], fields[1]
		if _, exists := subsystemLoggers[subsysID]; !exists {
			return fmt.Errorf("the specified subsystem [%v] is invalid -- supported subsystems %v", subsysID, supportedSubsystems())
		}
		if !validLogLevel(logLevel) {
			return fmt.Errorf("the specified debug level [%v] is invalid", logLevel)
		}
		setLogLevel(subsysID, logLevel)
	}
	return nil
}

// verboseLevel maps the repeated -v flag and -D/--debug shorthand onto
// the supported subset of slog levels: each -v steps one level
// more verbose than the previous, and --debug jumps straight to trace.
func verboseLevel(cfg *config) string {
	if cfg.Debug {
		return "trace"
	}
	levels := []string{"info", "debug", "trace"}
	idx := len(cfg.Verbose)
	if idx >= len(levels) {
		idx = len(levels) - 1
	}
	return levels[idx]
}

// splitCommaList flattens a repeatable, comma-splittable flag (each
// occurrence of -1/--reads may itself be a comma-separated list) into a
// single ordered slice.
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

// parseNumTempFiles implements the lenient fallback documented in
// DESIGN.md: a non-positive integer or a non-numeric, non-"auto" value
// warns and falls back to "auto" (returned as 0) rather than failing
// the run.
func parseNumTempFiles(s string) int {
	if s == "" || strings.EqualFold(s, defaultNumTempFiles) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		log.Warnf("--num-temp-files %q is not a positive integer or %q; falling back to auto", s, defaultNumTempFiles)
		return 0
	}
	return n
}

// loadConfig initializes and parses the config using a config file and
// command line options: a pre-parse pass handles --version and
// --configfile before the full parse applies config-file defaults.
func loadConfig() (*config, *shuffler.Config, error) {
	cfg := config{
		ConfigFile:   cfgutil.NewExplicitString(defaultConfigFile),
		LogDir:       cfgutil.NewExplicitString(defaultLogDir),
		DebugLevel:   defaultLogLevel,
		NumTempFiles: defaultNumTempFiles,
		BlockSize:    defaultBlockSize,
	}

	args := randomSeedAliasArgs(os.Args[1:])

	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.Default)
	if _, err := preParser.ParseArgs(args); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, nil, err
	}

	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	if preCfg.ShowVersion {
		fmt.Printf("%s version v%s (Go version %s)\n", appName, version.String(), runtime.Version())
		os.Exit(0)
	}

	parser := flags.NewParser(&cfg, flags.Default)
	configFilePath := preCfg.ConfigFile.Value
	if preCfg.ConfigFile.ExplicitlySet() {
		configFilePath = cleanAndExpandPath(configFilePath)
	}
	var configFileError error
	if err := flags.NewIniParser(parser).ParseFile(configFilePath); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			fmt.Fprintln(os.Stderr, err)
			parser.WriteHelp(os.Stderr)
			return nil, nil, err
		}
		configFileError = err
	}

	if _, err := parser.ParseArgs(args); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	if len(cfg.Reads) == 0 && len(cfg.Mates) == 0 {
		fmt.Fprintln(os.Stderr, "required parameter are --reads and --mates")
		parser.WriteHelp(os.Stderr)
		return nil, nil, fmt.Errorf("required parameter are --reads and --mates")
	}

	reads := splitCommaList(cfg.Reads)
	mates := splitCommaList(cfg.Mates)
	if len(reads) != len(mates) {
		fmt.Fprintln(os.Stderr, "ERROR Number of first and second read files are different")
		return nil, nil, fmt.Errorf("ERROR Number of first and second read files are different")
	}

	cfg.LogDir.Value = cleanAndExpandPath(cfg.LogDir.Value)
	initLogRotator(filepath.Join(cfg.LogDir.Value, defaultLogFilename))

	setLogLevels(verboseLevel(&cfg))
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	if configFileError != nil && cfg.ConfigFile.ExplicitlySet() {
		return nil, nil, configFileError
	}
	if configFileError != nil {
		log.Warnf("%v", configFileError)
	}

	for _, path := range append(append([]string(nil), reads...), mates...) {
		exists, err := cfgutil.FileExists(path)
		if err != nil {
			return nil, nil, err
		}
		if !exists {
			err := fmt.Errorf("input file does not exist: %s", path)
			log.Errorf("%v", err)
			return nil, nil, err
		}
	}

	if cfg.TempDir != "" {
		cfg.TempDir = cleanAndExpandPath(cfg.TempDir)
	}
	if cfg.OutDir != "" {
		cfg.OutDir = cleanAndExpandPath(cfg.OutDir)
	}
	for _, dir := range []string{cfg.TempDir, cfg.OutDir} {
		if dir == "" {
			continue
		}
		exists, err := cfgutil.DirExists(dir)
		if err != nil {
			return nil, nil, err
		}
		if !exists {
			err := fmt.Errorf("directory does not exist: %s", dir)
			log.Errorf("%v", err)
			return nil, nil, err
		}
	}

	blockSize, err := cfgutil.ParseByteSize(cfg.BlockSize)
	if err != nil {
		log.Errorf("%v", err)
		return nil, nil, err
	}
	numTempFiles := parseNumTempFiles(cfg.NumTempFiles)

	seed := cfg.Seed
	if seed == "" {
		seed = strconv.FormatInt(time.Now().Unix(), 10)
	}

	scfg := &shuffler.Config{
		Reads:          reads,
		Mates:          mates,
		BlockSizeBytes: blockSize,
		NumTempFiles:   numTempFiles,
		TempDir:        cfg.TempDir,
		OutDir:         cfg.OutDir,
		Seed:           seed,
	}
	return &cfg, scfg, nil
}
