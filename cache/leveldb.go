package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDB is a durable Store. Entries survive restarts of the process.
type LevelDB struct {
	db *leveldb.DB
}

func NewLevelDB(dbPath string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database @ %s: %w", dbPath, err)
	}
	return &LevelDB{db}, nil
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}

func (l *LevelDB) Get(_ context.Context, key string) (string, error) {
	value, err := l.db.Get([]byte(key), nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		return "", ErrNotFound
	case err != nil:
		return "", fmt.Errorf("get %s from DB: %w", key, err)
	}
	return string(value), nil
}

func (l *LevelDB) Set(_ context.Context, key, value string) error {
	if err := l.db.Put([]byte(key), []byte(value), &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("storing %s in DB: %w", key, err)
	}
	return nil
}

func (l *LevelDB) Remove(_ context.Context, key string) error {
	if err := l.db.Delete([]byte(key), &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("deleting %s from DB: %w", key, err)
	}
	return nil
}

// Take reads and deletes key within a single transaction.
func (l *LevelDB) Take(_ context.Context, key string) (string, error) {
	trans, err := l.db.OpenTransaction()
	if err != nil {
		return "", err
	}

	value, err := trans.Get([]byte(key), nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		trans.Discard()
		return "", ErrNotFound
	case err != nil:
		trans.Discard()
		return "", fmt.Errorf("get %s from DB: %w", key, err)
	}
	if err := trans.Delete([]byte(key), nil); err != nil {
		trans.Discard()
		return "", fmt.Errorf("deleting %s from DB: %w", key, err)
	}
	if err := trans.Commit(); err != nil {
		return "", fmt.Errorf("committing take of %s: %w", key, err)
	}
	return string(value), nil
}
