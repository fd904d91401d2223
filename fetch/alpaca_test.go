package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dnldd/orbflow/shared"
	"github.com/google/go-cmp/cmp"
	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog/log"
)

func TestChunkSymbols(t *testing.T) {
	symbols := []string{"A", "B", "C", "D", "E"}

	chunks := chunkSymbols(symbols, 2)
	want := [][]string{{"A", "B"}, {"C", "D"}, {"E"}}
	if !cmp.Equal(chunks, want) {
		t.Errorf("unexpected chunks: %s", cmp.Diff(want, chunks))
	}

	assert.Equal(t, len(chunkSymbols(nil, 2)), 0)
	assert.Equal(t, len(chunkSymbols(symbols, 10)), 1)
}

func TestBarTimeframe(t *testing.T) {
	_, err := barTimeframe(shared.OneMinute)
	assert.NoError(t, err)
	_, err = barTimeframe(shared.OneDay)
	assert.NoError(t, err)
	_, err = barTimeframe(shared.Timeframe(999))
	assert.Error(t, err)
}

func TestAlpacaConfigValidate(t *testing.T) {
	cfg := &AlpacaConfig{ChunkSize: -1}
	assert.Error(t, cfg.Validate())

	_, err := NewAlpacaClient(cfg)
	assert.Error(t, err)
}

func TestAlpacaClient(t *testing.T) {
	var barRequests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/v2/clock":
			_, _ = w.Write([]byte(`{"timestamp":"2025-03-10T10:00:00-04:00","is_open":true,` +
				`"next_open":"2025-03-11T09:30:00-04:00","next_close":"2025-03-10T16:00:00-04:00"}`))
		case "/v2/stocks/bars":
			barRequests++
			symbols := r.URL.Query().Get("symbols")
			if strings.Contains(symbols, "FAIL") {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(`{"message":"invalid symbol"}`))
				return
			}

			_, _ = w.Write([]byte(`{"bars":{"AAPL":[{"t":"2025-03-10T13:30:00Z","o":100,"h":101,` +
				`"l":99,"c":100.5,"v":1000,"n":10,"vw":100.2}]},"next_page_token":null}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client, err := NewAlpacaClient(&AlpacaConfig{
		APIKey:     "key",
		APISecret:  "secret",
		TradingURL: srv.URL,
		DataURL:    srv.URL,
		ChunkSize:  1,
		Logger:     &log.Logger,
	})
	assert.NoError(t, err)

	ctx := context.Background()

	// Ensure the market clock can be fetched.
	open, err := client.IsMarketOpen(ctx)
	assert.NoError(t, err)
	assert.True(t, open)

	// Ensure bars are fetched per chunk and converted to exchange time.
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	bars, err := client.FetchBars(ctx, []string{"AAPL", "FAIL"}, shared.OneMinute, start, start.Add(time.Hour*24))
	assert.NoError(t, err)
	assert.Equal(t, len(bars["AAPL"]), 1)
	assert.Equal(t, bars["AAPL"][0].Volume, float64(1000))
	assert.Equal(t, bars["AAPL"][0].Date.Hour(), 9)
	assert.Equal(t, bars["AAPL"][0].Date.Location().String(), shared.NewYorkLocation)
	assert.Equal(t, barRequests, 2)

	// Ensure an error is returned when every chunk fails.
	_, err = client.FetchBars(ctx, []string{"FAIL"}, shared.OneMinute, start, start.Add(time.Hour*24))
	assert.Error(t, err)
}
