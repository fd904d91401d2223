package market

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/peterldowns/testy/assert"
)

func TestNewWatchlist(t *testing.T) {
	now := time.Now()
	list := NewWatchlist(3, []string{"tsla", " AAPL", "MSFT", "aapl", "", "GME"}, []string{"gme"}, now)

	// Ensure symbols are normalized, deduplicated, sorted and filtered.
	want := []string{"AAPL", "MSFT", "TSLA"}
	if !cmp.Equal(list.Symbols(), want) {
		t.Errorf("unexpected symbols: %s", cmp.Diff(want, list.Symbols()))
	}
	assert.Equal(t, list.Version(), uint64(3))
	assert.Equal(t, list.Len(), 3)
	assert.Equal(t, list.CreatedOn(), now)
	assert.True(t, list.Contains("msft"))
	assert.False(t, list.Contains("GME"))

	// Ensure callers cannot mutate the snapshot.
	symbols := list.Symbols()
	symbols[0] = "ZZZ"
	assert.Equal(t, list.Symbols()[0], "AAPL")
}
