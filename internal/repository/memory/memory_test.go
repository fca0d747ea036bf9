package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bikeshare/dashboard/internal/domain"
)

func TestSource_Load(t *testing.T) {
	d := time.Date(2011, time.January, 1, 0, 0, 0, 0, time.UTC)
	src := NewSource(map[string][]domain.RentalRecord{
		"day.csv": {domain.NewRentalRecord(d, 985, 0.34, 0.8, 0.16)},
	})

	table, err := src.Load(context.Background(), "day.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, "day.csv", table.Source)
	assert.Equal(t, 1, src.Loads("day.csv"))
	assert.Equal(t, "memory", src.Name())

	_, err = src.Load(context.Background(), "other.csv")
	assert.Error(t, err)
	assert.Equal(t, 1, src.Loads("other.csv"))
}

func TestSource_FailWith(t *testing.T) {
	src := NewSource(map[string][]domain.RentalRecord{"day.csv": nil})
	boom := errors.New("boom")

	src.FailWith(boom)
	_, err := src.Load(context.Background(), "day.csv")
	assert.ErrorIs(t, err, boom)

	src.FailWith(nil)
	table, err := src.Load(context.Background(), "day.csv")
	require.NoError(t, err)
	assert.Zero(t, table.Len())
}

func TestSource_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSource(nil).Load(ctx, "day.csv")
	assert.ErrorIs(t, err, context.Canceled)
}
