package market

import (
	"errors"
	"testing"
	"time"

	"github.com/dnldd/orbflow/shared"
	"github.com/peterldowns/testy/assert"
)

// generateBars generates n bars spaced by step starting at the provided time.
func generateBars(start time.Time, n int, step time.Duration) []shared.Bar {
	bars := make([]shared.Bar, n)
	for idx := range n {
		bars[idx] = shared.Bar{
			Open:   10,
			High:   11,
			Low:    9,
			Close:  10 + float64(idx),
			Volume: 100,
			Date:   start.Add(step * time.Duration(idx)),
		}
	}

	return bars
}

func TestExtractSeries(t *testing.T) {
	_, loc, err := shared.NewYorkTime()
	assert.NoError(t, err)

	now := time.Date(2025, 3, 10, 10, 0, 0, 0, loc)
	open := time.Date(2025, 3, 10, 9, 30, 0, 0, loc)
	yesterday := open.AddDate(0, 0, -1)

	intraday := map[string][]shared.Bar{
		"AAPL": append(generateBars(yesterday, 30, time.Minute), generateBars(open, 30, time.Minute)...),
		"MSFT": generateBars(open, 30, time.Minute),
		"TSLA": append(generateBars(yesterday, 30, time.Minute), generateBars(open, 9, time.Minute)...),
		"NVDA": generateBars(open, 30, time.Minute),
		"AMD":  {},
	}
	daily := map[string][]shared.Bar{
		"AAPL": generateBars(now.AddDate(0, 0, -250), 250, time.Hour*24),
		"TSLA": generateBars(now.AddDate(0, 0, -250), 250, time.Hour*24),
		"NVDA": generateBars(now.AddDate(0, 0, -199), 199, time.Hour*24),
		"AMD":  generateBars(now.AddDate(0, 0, -250), 250, time.Hour*24),
	}

	tests := []struct {
		name   string
		ticker string
		reason shared.SkipReason
	}{
		{"absent from batch", "GOOG", shared.SkipNoIntraday},
		{"empty intraday", "AMD", shared.SkipNoIntraday},
		{"missing daily", "MSFT", shared.SkipNoDaily},
		{"short daily history", "NVDA", shared.SkipInsufficientDaily},
		{"too few bars today", "TSLA", shared.SkipInsufficientToday},
	}

	for _, test := range tests {
		_, err := ExtractSeries(test.ticker, intraday, daily, now)
		var skip *SkipError
		if !errors.As(err, &skip) {
			t.Errorf("%s: expected a skip error, got %v", test.name, err)
			continue
		}
		if skip.Reason != test.reason {
			t.Errorf("%s: expected %v, got %v", test.name, test.reason, skip.Reason)
		}
		if skip.Ticker != test.ticker {
			t.Errorf("%s: expected ticker %v, got %v", test.name, test.ticker, skip.Ticker)
		}
	}

	// Ensure a valid series is extracted with only today's bars as the session series.
	series, err := ExtractSeries("AAPL", intraday, daily, now)
	assert.NoError(t, err)
	assert.Equal(t, series.Ticker, "AAPL")
	assert.Equal(t, len(series.Intraday), 60)
	assert.Equal(t, len(series.Today), 30)
	assert.Equal(t, len(series.Daily), 250)
	assert.Equal(t, series.Today[0].Date, open)
	assert.Equal(t, series.Price(), float64(39))
}

func TestExtractHeldSeries(t *testing.T) {
	_, loc, err := shared.NewYorkTime()
	assert.NoError(t, err)

	now := time.Date(2025, 3, 10, 15, 55, 0, 0, loc)
	open := time.Date(2025, 3, 10, 9, 30, 0, 0, loc)
	yesterday := open.AddDate(0, 0, -1)

	intraday := map[string][]shared.Bar{
		"AAPL": append(generateBars(yesterday, 5, time.Minute), generateBars(open, 3, time.Minute)...),
		"MSFT": generateBars(yesterday, 5, time.Minute),
	}
	daily := map[string][]shared.Bar{
		"AAPL": generateBars(now.AddDate(0, 0, -5), 5, time.Hour*24),
	}

	// Ensure a held ticker with short daily history and few bars today still extracts.
	series, err := ExtractHeldSeries("AAPL", intraday, daily, now)
	assert.NoError(t, err)
	assert.Equal(t, len(series.Today), 3)
	assert.Equal(t, len(series.Daily), 5)
	assert.Equal(t, series.Price(), float64(12))

	// Ensure the full history gate would have skipped the same ticker.
	_, err = ExtractSeries("AAPL", intraday, daily, now)
	var skip *SkipError
	assert.True(t, errors.As(err, &skip))
	assert.Equal(t, skip.Reason, shared.SkipInsufficientDaily)

	// Ensure a held ticker without a current price is skipped.
	_, err = ExtractHeldSeries("MSFT", intraday, daily, now)
	assert.True(t, errors.As(err, &skip))
	assert.Equal(t, skip.Reason, shared.SkipInsufficientToday)

	_, err = ExtractHeldSeries("GOOG", intraday, daily, now)
	assert.True(t, errors.As(err, &skip))
	assert.Equal(t, skip.Reason, shared.SkipNoIntraday)
}

func TestSkipError(t *testing.T) {
	err := &SkipError{Ticker: "AAPL", Reason: shared.SkipNoDaily}
	assert.Equal(t, err.Error(), "AAPL: no daily data")

	err = &SkipError{Ticker: "AAPL", Reason: shared.SkipInsufficientDaily, Detail: "12 < 200"}
	assert.Equal(t, err.Error(), "AAPL: insufficient daily history (12 < 200)")
}

func TestSeriesPrice(t *testing.T) {
	var series Series
	assert.Equal(t, series.Price(), float64(0))
}
