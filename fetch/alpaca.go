package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/dnldd/orbflow/shared"
	"github.com/rs/zerolog"
)

const (
	// paperTradingURL is the alpaca paper trading api.
	paperTradingURL = "https://paper-api.alpaca.markets"
	// liveTradingURL is the alpaca live trading api.
	liveTradingURL = "https://api.alpaca.markets"
	// defaultChunkSize is the default number of symbols requested per bars call.
	defaultChunkSize = 50
)

// AlpacaConfig represents the configuration for the alpaca client.
type AlpacaConfig struct {
	// APIKey is the alpaca API key.
	APIKey string
	// APISecret is the alpaca API secret.
	APISecret string
	// Paper selects the paper trading api for the market clock.
	Paper bool
	// TradingURL overrides the trading api url, optional.
	TradingURL string
	// DataURL overrides the market data api url, optional.
	DataURL string
	// Feed is the market data feed (iex, sip), optional.
	Feed string
	// ChunkSize is the number of symbols requested per bars call, optional.
	ChunkSize int
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *AlpacaConfig) Validate() error {
	var errs error

	if cfg.APIKey == "" {
		errs = errors.Join(errs, fmt.Errorf("alpaca api key cannot be empty"))
	}
	if cfg.APISecret == "" {
		errs = errors.Join(errs, fmt.Errorf("alpaca api secret cannot be empty"))
	}
	if cfg.ChunkSize < 0 {
		errs = errors.Join(errs, fmt.Errorf("chunk size cannot be negative"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// AlpacaClient fetches bars and the market clock from alpaca.
type AlpacaClient struct {
	cfg     *AlpacaConfig
	data    *marketdata.Client
	trading *alpaca.Client
	loc     *time.Location
	logger  zerolog.Logger
}

var _ shared.BarFetcher = (*AlpacaClient)(nil)

// NewAlpacaClient initializes a new alpaca client.
func NewAlpacaClient(cfg *AlpacaConfig) (*AlpacaClient, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating alpaca config: %w", err)
	}

	_, loc, err := shared.NewYorkTime()
	if err != nil {
		return nil, err
	}

	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = defaultChunkSize
	}

	tradingURL := cfg.TradingURL
	if tradingURL == "" {
		tradingURL = liveTradingURL
		if cfg.Paper {
			tradingURL = paperTradingURL
		}
	}

	return &AlpacaClient{
		cfg: cfg,
		data: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    cfg.APIKey,
			APISecret: cfg.APISecret,
			BaseURL:   cfg.DataURL,
			Feed:      marketdata.Feed(cfg.Feed),
		}),
		trading: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    cfg.APIKey,
			APISecret: cfg.APISecret,
			BaseURL:   tradingURL,
		}),
		loc:    loc,
		logger: cfg.Logger.With().Str("component", "alpaca").Logger(),
	}, nil
}

// barTimeframe converts the provided timeframe to its alpaca equivalent.
func barTimeframe(timeframe shared.Timeframe) (marketdata.TimeFrame, error) {
	switch timeframe {
	case shared.OneMinute:
		return marketdata.OneMin, nil
	case shared.OneDay:
		return marketdata.OneDay, nil
	default:
		return marketdata.TimeFrame{}, fmt.Errorf("unknown timeframe provided: %s", timeframe.String())
	}
}

// convertBars converts alpaca bars to exchange local bars.
func (c *AlpacaClient) convertBars(bars []marketdata.Bar) []shared.Bar {
	set := make([]shared.Bar, len(bars))
	for idx := range bars {
		set[idx] = shared.Bar{
			Open:   bars[idx].Open,
			High:   bars[idx].High,
			Low:    bars[idx].Low,
			Close:  bars[idx].Close,
			Volume: float64(bars[idx].Volume),
			Date:   bars[idx].Timestamp.In(c.loc),
		}
	}

	return set
}

// chunkSymbols splits the provided symbols into chunks of at most size symbols.
func chunkSymbols(symbols []string, size int) [][]string {
	chunks := make([][]string, 0, len(symbols)/size+1)
	for start := 0; start < len(symbols); start += size {
		end := min(start+size, len(symbols))
		chunks = append(chunks, symbols[start:end])
	}

	return chunks
}

// FetchBars fetches split adjusted bars for the provided symbols in chunks. A failed chunk
// is logged and its symbols omitted; an error is only returned when every chunk fails.
func (c *AlpacaClient) FetchBars(ctx context.Context, symbols []string, timeframe shared.Timeframe, start time.Time, end time.Time) (map[string][]shared.Bar, error) {
	tf, err := barTimeframe(timeframe)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]shared.Bar, len(symbols))
	chunks := chunkSymbols(symbols, c.cfg.ChunkSize)

	var errs error
	var failed int
	for _, chunk := range chunks {
		err := ctx.Err()
		if err != nil {
			return nil, fmt.Errorf("fetching %s bars: %w", timeframe, err)
		}

		bars, err := c.data.GetMultiBars(chunk, marketdata.GetBarsRequest{
			TimeFrame:  tf,
			Adjustment: marketdata.All,
			Start:      start,
			End:        end,
		})
		if err != nil {
			failed++
			errs = errors.Join(errs, fmt.Errorf("fetching %s bars for %v: %w", timeframe, chunk, err))
			c.logger.Error().Msgf("fetching %s bars for %d symbols: %v", timeframe, len(chunk), err)
			continue
		}

		for sym, set := range bars {
			if len(set) == 0 {
				continue
			}

			result[sym] = c.convertBars(set)
		}
	}

	if len(chunks) > 0 && failed == len(chunks) {
		return nil, errs
	}

	return result, nil
}

// IsMarketOpen checks whether the market is currently open.
func (c *AlpacaClient) IsMarketOpen(ctx context.Context) (bool, error) {
	clock, err := c.trading.GetClock()
	if err != nil {
		return false, fmt.Errorf("fetching market clock: %w", err)
	}

	return clock.IsOpen, nil
}
