package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bikeshare/dashboard/internal/domain"
	"github.com/bikeshare/dashboard/internal/repository/memory"
)

func newMemorySource(t *testing.T) *memory.Source {
	return memory.NewSource(map[string][]domain.RentalRecord{
		"day.csv": mixedTable(t).Records(),
	})
}

func TestTableCache_LoadsOnce(t *testing.T) {
	src := newMemorySource(t)
	cache := NewTableCache(src, quietLogger())

	first, err := cache.Get(context.Background(), "day.csv")
	require.NoError(t, err)
	second, err := cache.Get(context.Background(), "day.csv")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, src.Loads("day.csv"))
	assert.Equal(t, 8, first.Len())
}

func TestTableCache_ConcurrentMiss(t *testing.T) {
	src := newMemorySource(t)
	cache := NewTableCache(src, quietLogger())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Get(context.Background(), "day.csv")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, src.Loads("day.csv"))
}

func TestTableCache_FailuresNotCached(t *testing.T) {
	src := newMemorySource(t)
	cache := NewTableCache(src, quietLogger())

	boom := errors.New("disk on fire")
	src.FailWith(boom)
	_, err := cache.Get(context.Background(), "day.csv")
	require.ErrorIs(t, err, boom)

	src.FailWith(nil)
	got, err := cache.Get(context.Background(), "day.csv")
	require.NoError(t, err)
	assert.Equal(t, 8, got.Len())
	assert.Equal(t, 2, src.Loads("day.csv"))
}

func TestTableCache_Invalidate(t *testing.T) {
	src := newMemorySource(t)
	cache := NewTableCache(src, quietLogger())

	_, err := cache.Get(context.Background(), "day.csv")
	require.NoError(t, err)
	cache.Invalidate("day.csv")
	_, err = cache.Get(context.Background(), "day.csv")
	require.NoError(t, err)

	assert.Equal(t, 2, src.Loads("day.csv"))
}

func TestTableCache_UnknownKey(t *testing.T) {
	cache := NewTableCache(newMemorySource(t), quietLogger())

	_, err := cache.Get(context.Background(), "missing.csv")
	assert.Error(t, err)
	assert.Equal(t, "memory", cache.Source().Name())
}

func TestTableCache_LoadOutlivesCanceledCaller(t *testing.T) {
	src := newMemorySource(t)
	cache := NewTableCache(src, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := cache.Get(ctx, "day.csv")
	require.NoError(t, err)
	assert.Equal(t, 8, got.Len())

	_, err = cache.Get(context.Background(), "day.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, src.Loads("day.csv"))
}
