package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dnldd/orbflow/shared"
	"github.com/google/go-cmp/cmp"
	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog/log"
)

// unusualWhalesServer serves canned responses keyed by request path.
func unusualWhalesServer(t *testing.T, responses map[string]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		body, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"unavailable"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func newUnusualWhalesClient(t *testing.T, url string) *UnusualWhalesClient {
	client, err := NewUnusualWhalesClient(&UnusualWhalesConfig{
		APIKey:             "key",
		BaseURL:            url,
		MinFlowPremium:     100000,
		MinCongressAmount:  15000,
		MinDarkPoolPremium: 1000000,
		Logger:             &log.Logger,
	})
	assert.NoError(t, err)

	return client
}

func TestUnusualWhalesConfigValidate(t *testing.T) {
	cfg := &UnusualWhalesConfig{MinFlowPremium: -1}
	assert.Error(t, cfg.Validate())

	_, err := NewUnusualWhalesClient(cfg)
	assert.Error(t, err)
}

func TestUnusualWhalesClient(t *testing.T) {
	srv := unusualWhalesServer(t, map[string]string{
		"/api/v1/flowAlerts": `{"data":[
			{"total_premium":"500000","type":"repeated_hits","sentiment":"bearish"},
			{"total_premium":"50000","type":"opener","sentiment":"bearish"},
			{"total_premium":"250000","type":"Opener","sentiment":"Bullish"}
		]}`,
		"/api/congress/recent-trades": `{"data":[
			{"amount":50000,"txn_type":"Buy"},
			{"amount":20000,"txn_type":"Sell"},
			{"amount":1000,"txn_type":"Sell"}
		]}`,
		"/api/darkpool/AAPL": `{"data":[
			{"premium":"2000000","price":"100.5","nbbo_bid":"100","nbbo_ask":"100.5"},
			{"premium":"3000000","price":"99.9","nbbo_bid":"100","nbbo_ask":"100.5"},
			{"premium":"500","price":"101","nbbo_bid":"100","nbbo_ask":"100.5"}
		]}`,
		"/api/stock/AAPL/iv-rank": `{"data":[{"iv_rank_1y":"55.5"},{"iv_rank_1y":"72.25"}]}`,
		"/api/screener/stocks":    `{"data":[{"ticker":"NVDA"},{"ticker":""},{"ticker":"AMD"}]}`,
	})
	defer srv.Close()

	client := newUnusualWhalesClient(t, srv.URL)
	ctx := context.Background()

	// Ensure only opening flow above the premium floor is considered.
	bias, err := client.FlowBias(ctx, "AAPL")
	assert.NoError(t, err)
	assert.Equal(t, bias, shared.Bullish)

	// Ensure congress trades net out above the amount floor.
	bias, err = client.CongressBias(ctx, "AAPL")
	assert.NoError(t, err)
	assert.Equal(t, bias, shared.Bullish)

	// Ensure dark pool prints net out by premium.
	bias, err = client.DarkPoolBias(ctx, "AAPL")
	assert.NoError(t, err)
	assert.Equal(t, bias, shared.Bearish)

	// Ensure the latest iv rank is returned.
	rank, err := client.IVRank(ctx, "AAPL")
	assert.NoError(t, err)
	assert.Equal(t, rank, 72.25)

	tickers, err := client.ScreenTickers(ctx)
	assert.NoError(t, err)
	if !cmp.Equal(tickers, []string{"NVDA", "AMD"}) {
		t.Errorf("unexpected tickers: %s", cmp.Diff([]string{"NVDA", "AMD"}, tickers))
	}

	// Ensure provider failures are returned as errors.
	_, err = client.DarkPoolBias(ctx, "MSFT")
	assert.Error(t, err)
	_, err = client.IVRank(ctx, "MSFT")
	assert.Error(t, err)
}

func TestUnusualWhalesNeutral(t *testing.T) {
	srv := unusualWhalesServer(t, map[string]string{
		"/api/v1/flowAlerts":          `{"data":[]}`,
		"/api/congress/recent-trades": `{"data":[{"amount":100,"txn_type":"Buy"}]}`,
		"/api/stock/AAPL/iv-rank":     `{"data":[]}`,
	})
	defer srv.Close()

	client := newUnusualWhalesClient(t, srv.URL)
	ctx := context.Background()

	// Ensure no qualifying data resolves to neutral.
	bias, err := client.FlowBias(ctx, "AAPL")
	assert.NoError(t, err)
	assert.Equal(t, bias, shared.Neutral)

	bias, err = client.CongressBias(ctx, "AAPL")
	assert.NoError(t, err)
	assert.Equal(t, bias, shared.Neutral)

	// Ensure a missing iv rank is an error.
	_, err = client.IVRank(ctx, "AAPL")
	assert.Error(t, err)
}
