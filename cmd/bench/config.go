package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

const (
	defaultHashes        = 1_000_000
	defaultMaxDifficulty = 4
	defaultRounds        = 20
	defaultCPU           = false
)

// config defines the configuration options for bench.
type config struct {
	Hashes        uint64 `short:"n" long:"hashes"         description:"number of serial sha-256 digests used to measure the hash rate"`
	MaxDifficulty uint   `short:"d" long:"max-difficulty" description:"largest difficulty to measure the proof search for"`
	Rounds        int    `short:"r" long:"rounds"         description:"number of proofs searched per difficulty"`
	CPU           bool   `short:"c" long:"cpuprofile"     description:"whether to enable CPU profiling"`
}

// loadConfig initializes and parses the config using command line options.
func loadConfig() (*config, error) {
	// Default config.
	cfg := config{
		Hashes:        defaultHashes,
		MaxDifficulty: defaultMaxDifficulty,
		Rounds:        defaultRounds,
		CPU:           defaultCPU,
	}

	// Parse command line options.
	if _, err := flags.Parse(&cfg); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		} else {
			_, _ = fmt.Fprintln(os.Stderr, err)
		}
		return nil, err
	}
	if cfg.Rounds <= 0 {
		err := fmt.Errorf("rounds must be positive, got %d", cfg.Rounds)
		_, _ = fmt.Fprintln(os.Stderr, err)
		return nil, err
	}

	return &cfg, nil
}
