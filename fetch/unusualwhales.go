package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dnldd/orbflow/shared"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const (
	// unusualWhalesURL is the unusual whales api.
	unusualWhalesURL = "https://api.unusualwhales.com"
	// defaultRequestTimeout is the default http request timeout.
	defaultRequestTimeout = time.Second * 10
	// flowAlertLimit is the number of recent flow alerts inspected.
	flowAlertLimit = 5
	// defaultScreenerLimit is the default number of screened tickers.
	defaultScreenerLimit = 50
)

// UnusualWhalesConfig represents the configuration for the unusual whales client.
type UnusualWhalesConfig struct {
	// APIKey is the unusual whales API key.
	APIKey string
	// BaseURL overrides the api url, optional.
	BaseURL string
	// MinFlowPremium is the minimum total premium of a flow alert.
	MinFlowPremium float64
	// MinCongressAmount is the minimum amount of a congress trade.
	MinCongressAmount float64
	// MinDarkPoolPremium is the minimum premium of a dark pool print.
	MinDarkPoolPremium float64
	// ScreenerLimit is the number of screened tickers fetched, optional.
	ScreenerLimit int
	// Timeout is the http request timeout, optional.
	Timeout time.Duration
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *UnusualWhalesConfig) Validate() error {
	var errs error

	if cfg.APIKey == "" {
		errs = errors.Join(errs, fmt.Errorf("unusual whales api key cannot be empty"))
	}
	if cfg.MinFlowPremium < 0 {
		errs = errors.Join(errs, fmt.Errorf("min flow premium cannot be negative"))
	}
	if cfg.MinCongressAmount < 0 {
		errs = errors.Join(errs, fmt.Errorf("min congress amount cannot be negative"))
	}
	if cfg.MinDarkPoolPremium < 0 {
		errs = errors.Join(errs, fmt.Errorf("min dark pool premium cannot be negative"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// UnusualWhalesClient fetches sentiment data and screened tickers from unusual whales.
type UnusualWhalesClient struct {
	cfg    *UnusualWhalesConfig
	httpc  *resty.Client
	logger zerolog.Logger
}

// NewUnusualWhalesClient initializes a new unusual whales client.
func NewUnusualWhalesClient(cfg *UnusualWhalesConfig) (*UnusualWhalesClient, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating unusual whales config: %w", err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = unusualWhalesURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultRequestTimeout
	}
	if cfg.ScreenerLimit == 0 {
		cfg.ScreenerLimit = defaultScreenerLimit
	}

	httpc := resty.New()
	httpc.SetBaseURL(cfg.BaseURL)
	httpc.SetTimeout(cfg.Timeout)
	httpc.SetAuthToken(cfg.APIKey)
	httpc.SetHeader("Accept", "application/json")

	return &UnusualWhalesClient{
		cfg:    cfg,
		httpc:  httpc,
		logger: cfg.Logger.With().Str("component", "unusualwhales").Logger(),
	}, nil
}

// get fetches the provided path and returns its data array.
func (c *UnusualWhalesClient) get(ctx context.Context, path string, ticker string, params map[string]string) ([]gjson.Result, error) {
	req := c.httpc.R().SetContext(ctx).SetQueryParams(params)
	if ticker != "" {
		req.SetPathParam("ticker", ticker)
	}

	resp, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", path, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected %s response status %d: %s", path, resp.StatusCode(),
			truncate(resp.String(), 200))
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid json response from %s", path)
	}

	return gjson.GetBytes(body, "data").Array(), nil
}

// truncate shortens the provided string to at most n bytes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n]
}

// FlowBias returns the bias of the most recent opening options flow alert with at least the
// minimum premium, neutral when there is none.
func (c *UnusualWhalesClient) FlowBias(ctx context.Context, ticker string) (shared.Bias, error) {
	alerts, err := c.get(ctx, "/api/v1/flowAlerts", "", map[string]string{
		"ticker": ticker,
		"limit":  strconv.Itoa(flowAlertLimit),
		"sort":   "desc",
	})
	if err != nil {
		return shared.Neutral, fmt.Errorf("fetching flow alerts for %s: %w", ticker, err)
	}

	for _, alert := range alerts {
		premium := alert.Get("total_premium").Float()
		kind := strings.ToLower(alert.Get("type").String())
		if premium < c.cfg.MinFlowPremium || !strings.Contains(kind, "opener") {
			continue
		}

		sentiment := strings.ToLower(alert.Get("sentiment").String())
		switch {
		case strings.Contains(sentiment, "bullish"):
			return shared.Bullish, nil
		case strings.Contains(sentiment, "bearish"):
			return shared.Bearish, nil
		}
	}

	return shared.Neutral, nil
}

// netBias classifies a net signed amount.
func netBias(net float64) shared.Bias {
	switch {
	case net > 0:
		return shared.Bullish
	case net < 0:
		return shared.Bearish
	default:
		return shared.Neutral
	}
}

// CongressBias returns the net direction of recent congress trades of at least the minimum
// amount.
func (c *UnusualWhalesClient) CongressBias(ctx context.Context, ticker string) (shared.Bias, error) {
	trades, err := c.get(ctx, "/api/congress/recent-trades", "", map[string]string{
		"ticker": ticker,
	})
	if err != nil {
		return shared.Neutral, fmt.Errorf("fetching congress trades for %s: %w", ticker, err)
	}

	var net float64
	for _, trade := range trades {
		amount := trade.Get("amount").Float()
		if amount < c.cfg.MinCongressAmount {
			continue
		}

		txn := strings.ToLower(trade.Get("txn_type").String())
		switch {
		case strings.Contains(txn, "buy"), strings.Contains(txn, "purchase"):
			net += amount
		case strings.Contains(txn, "sell"), strings.Contains(txn, "sale"):
			net -= amount
		}
	}

	return netBias(net), nil
}

// DarkPoolBias returns the net direction of recent dark pool prints of at least the minimum
// premium. Prints at or above the ask count as buying, at or below the bid as selling.
func (c *UnusualWhalesClient) DarkPoolBias(ctx context.Context, ticker string) (shared.Bias, error) {
	prints, err := c.get(ctx, "/api/darkpool/{ticker}", ticker, nil)
	if err != nil {
		return shared.Neutral, fmt.Errorf("fetching dark pool prints for %s: %w", ticker, err)
	}

	var net float64
	for _, dp := range prints {
		premium := dp.Get("premium").Float()
		if premium < c.cfg.MinDarkPoolPremium {
			continue
		}

		price := dp.Get("price").Float()
		bid := dp.Get("nbbo_bid").Float()
		ask := dp.Get("nbbo_ask").Float()
		switch {
		case ask > 0 && price >= ask:
			net += premium
		case bid > 0 && price <= bid:
			net -= premium
		}
	}

	return netBias(net), nil
}

// IVRank returns the latest one year iv rank, in [0, 100].
func (c *UnusualWhalesClient) IVRank(ctx context.Context, ticker string) (float64, error) {
	ranks, err := c.get(ctx, "/api/stock/{ticker}/iv-rank", ticker, nil)
	if err != nil {
		return 0, fmt.Errorf("fetching iv rank for %s: %w", ticker, err)
	}

	if len(ranks) == 0 {
		return 0, fmt.Errorf("no iv rank data for %s", ticker)
	}

	return ranks[len(ranks)-1].Get("iv_rank_1y").Float(), nil
}

// ScreenTickers returns the tickers of the stock screener ordered by relative volume.
func (c *UnusualWhalesClient) ScreenTickers(ctx context.Context) ([]string, error) {
	rows, err := c.get(ctx, "/api/screener/stocks", "", map[string]string{
		"order":           "relative_volume",
		"order_direction": "desc",
		"limit":           strconv.Itoa(c.cfg.ScreenerLimit),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching screened tickers: %w", err)
	}

	tickers := make([]string, 0, len(rows))
	for _, row := range rows {
		ticker := row.Get("ticker").String()
		if ticker == "" {
			continue
		}

		tickers = append(tickers, ticker)
	}

	c.logger.Info().Msgf("screener returned %d tickers", len(tickers))

	return tickers, nil
}
