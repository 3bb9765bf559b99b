package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/powgate/miner"
)

func TestReadingNonExistingConfigFile(t *testing.T) {
	cfg := Config{
		ConfigFile: "non-existing-file",
	}
	_, err := ReadConfigFile(&cfg)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigFile(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.ConfigFile = filepath.Join(dir, "config.ini")
	content := `dbdir = /tmp/proofs

[Miner]
difficulty = 3
timeout = 1m

[Cache]
cache = memory

[Form]
action = http://localhost:5000/register
previous-hash = abc
field = email:user@example.com
`
	require.NoError(t, os.WriteFile(cfg.ConfigFile, []byte(content), 0o600))

	// Act
	cfg, err := ReadConfigFile(cfg)

	// Verify
	require.NoError(t, err)
	require.Equal(t, "/tmp/proofs", cfg.DbDir)
	require.EqualValues(t, 3, cfg.Miner.Difficulty)
	require.Equal(t, time.Minute, cfg.Miner.Timeout)
	require.Equal(t, miner.DefaultConfig().AttemptInterval, cfg.Miner.AttemptInterval)
	require.Equal(t, "memory", cfg.Cache.Backend)
	require.Equal(t, "http://localhost:5000/register", cfg.Form.Action)
	require.Equal(t, "abc", cfg.Form.PreviousHash)
	require.Equal(t, map[string]string{"email": "user@example.com"}, cfg.Form.Fields)
}

func TestReadConfigFilePathNotSet(t *testing.T) {
	cfg, err := ReadConfigFile(&Config{})
	require.NoError(t, err)
	require.Equal(t, &Config{}, cfg)
}

func TestSetupConfig(t *testing.T) {
	t.Run("paths follow a custom powgate dir", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.PowgateDir = t.TempDir()

		cfg, err := SetupConfig(cfg)
		require.NoError(t, err)
		require.Equal(t, filepath.Join(cfg.PowgateDir, "db"), cfg.DbDir)
		require.Equal(t, filepath.Join(cfg.PowgateDir, "logs", "powgate.log"), cfg.LogFile())
	})
	t.Run("explicit paths are kept", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.PowgateDir = t.TempDir()
		cfg.DbDir = filepath.Join(t.TempDir(), "custom")

		dbdir := cfg.DbDir
		cfg, err := SetupConfig(cfg)
		require.NoError(t, err)
		require.Equal(t, dbdir, cfg.DbDir)
	})
	t.Run("invalid miner config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.PowgateDir = t.TempDir()
		cfg.Miner.Difficulty = 0

		_, err := SetupConfig(cfg)
		require.ErrorIs(t, err, miner.ErrInvalidConfig)
	})
}

func TestCleanAndExpandPath(t *testing.T) {
	t.Setenv("POWGATE_TEST_DIR", "/var/lib")
	require.Equal(t, "/var/lib/powgate", cleanAndExpandPath("$POWGATE_TEST_DIR/powgate/"))
	require.Empty(t, cleanAndExpandPath(""))
}
