package miner

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"
)

const (
	defaultDifficulty      = 1
	defaultAttemptInterval = 100 * time.Millisecond
	defaultTimeout         = 5 * time.Minute
)

var ErrInvalidConfig = errors.New("invalid miner config")

//nolint:lll
type Config struct {
	Difficulty      uint          `long:"difficulty"       description:"Number of trailing '0' characters required in the hex digest"`
	AttemptInterval time.Duration `long:"attempt-interval" description:"Time between two consecutive nonce attempts"`
	Timeout         time.Duration `long:"timeout"          description:"Give up the search after this long"`
}

func DefaultConfig() Config {
	return Config{
		Difficulty:      defaultDifficulty,
		AttemptInterval: defaultAttemptInterval,
		Timeout:         defaultTimeout,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Difficulty == 0:
		return fmt.Errorf("%w: difficulty must be positive", ErrInvalidConfig)
	case c.AttemptInterval <= 0:
		return fmt.Errorf("%w: attempt interval must be positive, got %v", ErrInvalidConfig, c.AttemptInterval)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive, got %v", ErrInvalidConfig, c.Timeout)
	}
	return nil
}

// implement zap.ObjectMarshaler interface.
func (c Config) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddUint("difficulty", c.Difficulty)
	enc.AddDuration("attempt-interval", c.AttemptInterval)
	enc.AddDuration("timeout", c.Timeout)
	return nil
}
