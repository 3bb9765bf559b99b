// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2016 The Decred developers
// Copyright (c) 2017-2023 The Spacemesh developers

package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"

	"github.com/spacemeshos/powgate/cache"
	"github.com/spacemeshos/powgate/form"
	"github.com/spacemeshos/powgate/logging"
	"github.com/spacemeshos/powgate/miner"
)

const (
	defaultDbDirName      = "db"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "powgate.log"
	defaultMaxLogFiles    = 3
	defaultMaxLogFileSize = 10
)

// Config defines the configuration options for powgate.
//
// Values are resolved in order: defaults, config file, command line.
//
//nolint:lll
type Config struct {
	PowgateDir     string  `long:"powgatedir"     description:"The base directory that contains powgate's cache, logs, configuration file, etc."`
	ConfigFile     string  `long:"configfile"     description:"Path to configuration file"                                                          short:"c"`
	DbDir          string  `long:"dbdir"          description:"The directory to store the proof cache within"`
	LogDir         string  `long:"logdir"         description:"Directory to log output."`
	DebugLog       bool    `long:"debuglog"       description:"Enable debug logs"`
	JSONLog        bool    `long:"jsonlog"        description:"Whether to log in JSON format"`
	MaxLogFiles    int     `long:"maxlogfiles"    description:"Maximum logfiles to keep (0 for no rotation)"`
	MaxLogFileSize int     `long:"maxlogfilesize" description:"Maximum logfile size in MB"`
	MetricsPort    *uint16 `long:"metrics-port"   description:"The port to expose metrics"`
	ShowDigests    bool    `long:"show-digests"   description:"Log every computed digest"`

	Miner miner.Config `group:"Miner"`
	Cache cache.Config `group:"Cache"`
	Form  form.Config  `group:"Form"`
}

// DefaultConfig returns a config with default hardcoded values.
func DefaultConfig() *Config {
	powgateDir := "./powgate"
	cacheDir, err := os.UserCacheDir()
	if err == nil {
		powgateDir = filepath.Join(cacheDir, "powgate")
	}

	return &Config{
		PowgateDir:     powgateDir,
		DbDir:          filepath.Join(powgateDir, defaultDbDirName),
		LogDir:         filepath.Join(powgateDir, defaultLogDirname),
		MaxLogFiles:    defaultMaxLogFiles,
		MaxLogFileSize: defaultMaxLogFileSize,
		Miner:          miner.DefaultConfig(),
		Cache:          cache.DefaultConfig(),
		Form:           form.DefaultConfig(),
	}
}

// ParseFlags reads values from command line arguments.
func ParseFlags(preCfg *Config) (*Config, error) {
	if _, err := flags.Parse(preCfg); err != nil {
		return nil, err
	}
	return preCfg, nil
}

// ReadConfigFile reads config from an ini file.
// It uses the provided `cfg` as a base config and overrides it with the values
// from the config file.
func ReadConfigFile(cfg *Config) (*Config, error) {
	if cfg.ConfigFile == "" {
		return cfg, nil
	}
	logging.FromContext(context.Background()).Sugar().Debugf("reading config from %s", cfg.ConfigFile)
	if err := flags.IniParse(cfg.ConfigFile, cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from %v: %w", cfg.ConfigFile, err)
	}

	return cfg, nil
}

// SetupConfig expands paths and initializes filesystem.
func SetupConfig(cfg *Config) (*Config, error) {
	// If the provided powgate directory is not the default, we'll modify the
	// path to all of the files and directories that will live within it.
	defaultCfg := DefaultConfig()
	if cfg.PowgateDir != defaultCfg.PowgateDir {
		if cfg.LogDir == defaultCfg.LogDir {
			cfg.LogDir = filepath.Join(cfg.PowgateDir, defaultLogDirname)
		}
		if cfg.DbDir == defaultCfg.DbDir {
			cfg.DbDir = filepath.Join(cfg.PowgateDir, defaultDbDirName)
		}
	}

	if err := os.MkdirAll(cfg.PowgateDir, 0o700); err != nil {
		// Show a nicer error message if it's because a symlink is
		// linked to a directory that does not exist (probably because
		// it's not mounted).
		var pathError *fs.PathError
		if errors.As(err, &pathError) && os.IsExist(err) {
			if link, lerr := os.Readlink(pathError.Path); lerr == nil {
				err = fmt.Errorf("is symlink %s -> %s mounted?", pathError.Path, link)
			}
		}
		return nil, fmt.Errorf("failed to create %v: %w", cfg.PowgateDir, err)
	}

	// As soon as we're done parsing configuration options, ensure all paths
	// to directories and files are cleaned and expanded before attempting
	// to use them later on.
	cfg.DbDir = cleanAndExpandPath(cfg.DbDir)
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)

	if err := cfg.Miner.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LogFile returns the path of the log file inside LogDir.
func (c *Config) LogFile() string {
	return filepath.Join(c.LogDir, defaultLogFilename)
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
// This function is taken from https://github.com/btcsuite/btcd
func cleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		var homeDir string
		user, err := user.Current()
		if err == nil {
			homeDir = user.HomeDir
		} else {
			homeDir = os.Getenv("HOME")
		}

		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}
