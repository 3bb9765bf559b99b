package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemory_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	m, err := NewMemory(2)
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "a", "1"))
	require.NoError(t, m.Set(ctx, "b", "2"))
	_, err = m.Get(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, m.Set(ctx, "c", "3"))

	require.Equal(t, 2, m.Len())
	_, err = m.Get(ctx, "b")
	require.ErrorIs(t, err, ErrNotFound)
	value, err := m.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "1", value)
}

func TestMemory_InvalidSize(t *testing.T) {
	_, err := NewMemory(0)
	require.Error(t, err)
}

func TestMemory_TakeOnlyOnce(t *testing.T) {
	ctx := context.Background()
	m, err := NewMemory(DefaultMemorySize)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		key := fmt.Sprintf("hash-%d", i)
		require.NoError(t, m.Set(ctx, key, "proof"))

		var (
			wg    sync.WaitGroup
			taken atomic.Int32
		)
		for j := 0; j < 8; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := m.Take(ctx, key); err == nil {
					taken.Add(1)
				}
			}()
		}
		wg.Wait()
		require.EqualValues(t, 1, taken.Load())
	}
}
