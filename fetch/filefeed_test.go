package fetch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dnldd/orbflow/shared"
	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog/log"
)

const recordedBars = `{
	"1m": {
		"AAPL": [
			{"open":100,"high":101,"low":99,"close":100.5,"volume":1000,"date":"2025-03-10 09:30:00"},
			{"open":100.5,"high":102,"low":100,"close":101.5,"volume":1500,"date":"2025-03-10 09:31:00"}
		],
		"MSFT": []
	},
	"1D": {
		"AAPL": [
			{"open":98,"high":100,"low":97,"close":99,"volume":390000,"date":"2025-03-07 00:00:00"}
		]
	}
}`

func TestFileBarFeed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bars.json")
	err := os.WriteFile(path, []byte(recordedBars), 0o600)
	assert.NoError(t, err)

	// Ensure config validation fails on a missing path.
	_, err = NewFileBarFeed(&FileBarFeedConfig{Logger: &log.Logger})
	assert.Error(t, err)

	// Ensure a missing file fails to load.
	_, err = NewFileBarFeed(&FileBarFeedConfig{FilePath: filepath.Join(dir, "missing.json"), Logger: &log.Logger})
	assert.Error(t, err)

	feed, err := NewFileBarFeed(&FileBarFeedConfig{FilePath: path, Logger: &log.Logger})
	assert.NoError(t, err)

	_, loc, err := shared.NewYorkTime()
	assert.NoError(t, err)

	ctx := context.Background()
	start := time.Date(2025, 3, 10, 9, 31, 0, 0, loc)

	// Ensure only requested symbols with data in range are returned.
	bars, err := feed.FetchBars(ctx, []string{"AAPL", "MSFT", "TSLA"}, shared.OneMinute, start, time.Time{})
	assert.NoError(t, err)
	assert.Equal(t, len(bars), 1)
	assert.Equal(t, len(bars["AAPL"]), 1)
	assert.Equal(t, bars["AAPL"][0].Close, 101.5)

	daily, err := feed.FetchBars(ctx, []string{"AAPL"}, shared.OneDay, start.AddDate(0, 0, -30), start)
	assert.NoError(t, err)
	assert.Equal(t, len(daily["AAPL"]), 1)

	// Ensure unknown timeframes are rejected.
	_, err = feed.FetchBars(ctx, []string{"AAPL"}, shared.Timeframe(999), start, time.Time{})
	assert.Error(t, err)
}
