package position

import (
	"context"
	"testing"

	"github.com/dnldd/orbflow/shared"
	"github.com/google/go-cmp/cmp"
	"github.com/peterldowns/testy/assert"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// Ensure a flat ticker returns no position.
	pos, err := store.Get(ctx, "AAPL")
	assert.NoError(t, err)
	assert.Nil(t, pos)

	// Ensure a nil position cannot be stored.
	err = store.Put(ctx, nil)
	assert.Error(t, err)

	long := &shared.Position{ID: "a", Ticker: "AAPL", Direction: shared.Long, EntryPrice: 10}
	err = store.Put(ctx, long)
	assert.NoError(t, err)

	// Ensure storing the same position again is a no-op.
	err = store.Put(ctx, long)
	assert.NoError(t, err)

	// Ensure a second position for the same ticker is rejected.
	short := &shared.Position{ID: "b", Ticker: "AAPL", Direction: shared.Short, EntryPrice: 10}
	err = store.Put(ctx, short)
	assert.Error(t, err)

	// Ensure stored positions are copies.
	long.EntryPrice = 99
	pos, err = store.Get(ctx, "AAPL")
	assert.NoError(t, err)
	assert.Equal(t, pos.EntryPrice, float64(10))
	assert.Equal(t, pos.ID, "a")

	err = store.Put(ctx, &shared.Position{ID: "c", Ticker: "MSFT", Direction: shared.Short, EntryPrice: 20})
	assert.NoError(t, err)

	open, err := store.ListOpen(ctx)
	assert.NoError(t, err)
	if !cmp.Equal(open, []string{"AAPL", "MSFT"}) {
		t.Errorf("unexpected open tickers: %s", cmp.Diff([]string{"AAPL", "MSFT"}, open))
	}

	// Ensure a deleted position frees the ticker.
	err = store.Delete(ctx, "AAPL")
	assert.NoError(t, err)
	pos, err = store.Get(ctx, "AAPL")
	assert.NoError(t, err)
	assert.Nil(t, pos)

	err = store.Put(ctx, short)
	assert.NoError(t, err)
}
