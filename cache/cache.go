package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/spacemeshos/powgate/logging"
)

var ErrNotFound = errors.New("not found")

var lookupsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "powgate",
	Subsystem: "cache",
	Name:      "lookups_total",
	Help:      "Number of proof cache lookups by result",
}, []string{"result"})

var savesMetric = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "powgate",
	Subsystem: "cache",
	Name:      "saves_total",
	Help:      "Number of proofs written to the cache",
})

//go:generate mockgen -package mocks -destination mocks/store.go . Store

// Store is a string key-value store.
// Get returns ErrNotFound if the key is missing.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Taker is implemented by stores that can read and remove a key atomically.
type Taker interface {
	Take(ctx context.Context, key string) (string, error)
}

// ProofCache keeps at most one found proof per previous hash.
// Reading a proof consumes it.
type ProofCache struct {
	store Store
}

func NewProofCache(store Store) *ProofCache {
	return &ProofCache{store: store}
}

// Consume returns the proof cached for previousHash and removes it.
// Returns ErrNotFound on a miss.
func (c *ProofCache) Consume(ctx context.Context, previousHash string) (string, error) {
	proof, err := c.take(ctx, previousHash)
	switch {
	case errors.Is(err, ErrNotFound):
		lookupsMetric.WithLabelValues("miss").Inc()
		return "", err
	case err != nil:
		lookupsMetric.WithLabelValues("error").Inc()
		return "", fmt.Errorf("consuming proof for %s: %w", previousHash, err)
	}
	lookupsMetric.WithLabelValues("hit").Inc()
	logging.FromContext(ctx).Debug("consumed cached proof", zap.String("previous_hash", previousHash), zap.String("proof", proof))
	return proof, nil
}

func (c *ProofCache) take(ctx context.Context, key string) (string, error) {
	if taker, ok := c.store.(Taker); ok {
		return taker.Take(ctx, key)
	}
	value, err := c.store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if err := c.store.Remove(ctx, key); err != nil {
		return "", fmt.Errorf("removing consumed entry: %w", err)
	}
	return value, nil
}

// Save stores proof under previousHash, overwriting any previous entry.
func (c *ProofCache) Save(ctx context.Context, previousHash, proof string) error {
	if err := c.store.Set(ctx, previousHash, proof); err != nil {
		return fmt.Errorf("saving proof for %s: %w", previousHash, err)
	}
	savesMetric.Inc()
	return nil
}
