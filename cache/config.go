package cache

import (
	"fmt"
	"path/filepath"
)

const (
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"
)

//nolint:lll
type Config struct {
	Backend    string `long:"cache"      description:"Where found proofs are kept between attempts" choice:"leveldb" choice:"memory"`
	MemorySize int    `long:"cache-size" description:"Maximum number of proofs kept by the memory cache"`
}

func DefaultConfig() Config {
	return Config{
		Backend:    BackendLevelDB,
		MemorySize: DefaultMemorySize,
	}
}

// Open creates the store selected by cfg. The returned func releases it.
func Open(cfg Config, dbdir string) (Store, func() error, error) {
	switch cfg.Backend {
	case BackendMemory:
		store, err := NewMemory(cfg.MemorySize)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return nil }, nil
	case BackendLevelDB, "":
		store, err := NewLevelDB(filepath.Join(dbdir, "proofs"))
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
