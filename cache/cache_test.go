package cache_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/powgate/cache"
	"github.com/spacemeshos/powgate/cache/mocks"
)

func newMemory(t *testing.T) *cache.Memory {
	t.Helper()
	m, err := cache.NewMemory(cache.DefaultMemorySize)
	require.NoError(t, err)
	return m
}

func TestProofCache_ConsumeRemovesEntry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	proofs := cache.NewProofCache(newMemory(t))

	require.NoError(t, proofs.Save(ctx, "hash", "12"))

	proof, err := proofs.Consume(ctx, "hash")
	require.NoError(t, err)
	require.Equal(t, "12", proof)

	_, err = proofs.Consume(ctx, "hash")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestProofCache_SaveOverwrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	proofs := cache.NewProofCache(newMemory(t))

	require.NoError(t, proofs.Save(ctx, "hash", "1"))
	require.NoError(t, proofs.Save(ctx, "hash", "2"))

	proof, err := proofs.Consume(ctx, "hash")
	require.NoError(t, err)
	require.Equal(t, "2", proof)
	_, err = proofs.Consume(ctx, "hash")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestProofCache_KeysAreIndependent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	proofs := cache.NewProofCache(newMemory(t))

	require.NoError(t, proofs.Save(ctx, "a", "1"))
	require.NoError(t, proofs.Save(ctx, "b", "2"))

	proof, err := proofs.Consume(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, "2", proof)

	proof, err = proofs.Consume(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "1", proof)
}

func TestProofCache_FallsBackToGetAndRemove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := mocks.NewMockStore(gomock.NewController(t))
	proofs := cache.NewProofCache(store)

	gomock.InOrder(
		store.EXPECT().Get(ctx, "hash").Return("7", nil),
		store.EXPECT().Remove(ctx, "hash").Return(nil),
	)
	proof, err := proofs.Consume(ctx, "hash")
	require.NoError(t, err)
	require.Equal(t, "7", proof)

	store.EXPECT().Get(ctx, "missing").Return("", cache.ErrNotFound)
	_, err = proofs.Consume(ctx, "missing")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestProofCache_RemoveFailureIsNotAHit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := mocks.NewMockStore(gomock.NewController(t))
	proofs := cache.NewProofCache(store)

	failure := errors.New("disk on fire")
	store.EXPECT().Get(ctx, "hash").Return("7", nil)
	store.EXPECT().Remove(ctx, "hash").Return(failure)

	_, err := proofs.Consume(ctx, "hash")
	require.ErrorIs(t, err, failure)
	require.NotErrorIs(t, err, cache.ErrNotFound)
}

func TestProofCache_SaveError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := mocks.NewMockStore(gomock.NewController(t))
	proofs := cache.NewProofCache(store)

	failure := errors.New("read only")
	store.EXPECT().Set(ctx, "hash", "1").Return(failure)
	require.ErrorIs(t, proofs.Save(ctx, "hash", "1"), failure)
}

func TestOpen(t *testing.T) {
	t.Parallel()
	t.Run("memory", func(t *testing.T) {
		t.Parallel()
		store, closer, err := cache.Open(cache.Config{Backend: cache.BackendMemory, MemorySize: 2}, t.TempDir())
		require.NoError(t, err)
		require.IsType(t, &cache.Memory{}, store)
		require.NoError(t, closer())
	})
	t.Run("leveldb", func(t *testing.T) {
		t.Parallel()
		store, closer, err := cache.Open(cache.DefaultConfig(), t.TempDir())
		require.NoError(t, err)
		require.IsType(t, &cache.LevelDB{}, store)
		require.NoError(t, closer())
	})
	t.Run("unknown", func(t *testing.T) {
		t.Parallel()
		_, _, err := cache.Open(cache.Config{Backend: "redis"}, t.TempDir())
		require.Error(t, err)
	})
}
