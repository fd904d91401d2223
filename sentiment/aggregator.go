package sentiment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dnldd/orbflow/metrics"
	"github.com/dnldd/orbflow/shared"
	"github.com/rs/zerolog"
)

const (
	// defaultTimeout is the default per-source call timeout.
	defaultTimeout = time.Second * 10
)

// BiasSource fetches a directional read for the provided ticker.
type BiasSource func(ctx context.Context, ticker string) (shared.Bias, error)

// RankSource fetches the iv rank, in [0, 100], for the provided ticker.
type RankSource func(ctx context.Context, ticker string) (float64, error)

// AggregatorConfig represents the sentiment aggregator configuration.
type AggregatorConfig struct {
	// Flow fetches the options flow bias.
	Flow BiasSource
	// Congress fetches the congress trades bias.
	Congress BiasSource
	// DarkPool fetches the dark pool bias.
	DarkPool BiasSource
	// IVRank fetches the implied volatility rank.
	IVRank RankSource
	// Timeout bounds each source call.
	Timeout time.Duration
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *AggregatorConfig) Validate() error {
	var errs error

	if cfg.Flow == nil {
		errs = errors.Join(errs, fmt.Errorf("flow source cannot be nil"))
	}
	if cfg.Congress == nil {
		errs = errors.Join(errs, fmt.Errorf("congress source cannot be nil"))
	}
	if cfg.DarkPool == nil {
		errs = errors.Join(errs, fmt.Errorf("dark pool source cannot be nil"))
	}
	if cfg.IVRank == nil {
		errs = errors.Join(errs, fmt.Errorf("iv rank source cannot be nil"))
	}
	if cfg.Timeout < 0 {
		errs = errors.Join(errs, fmt.Errorf("timeout cannot be negative"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Aggregator combines the sentiment sources into snapshots.
type Aggregator struct {
	cfg    *AggregatorConfig
	logger zerolog.Logger
}

// NewAggregator initializes a new sentiment aggregator.
func NewAggregator(cfg *AggregatorConfig) (*Aggregator, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating sentiment aggregator config: %w", err)
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Aggregator{
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "sentiment").Logger(),
	}, nil
}

// fetchBias calls the provided source under the configured timeout. A failed call resolves
// to neutral.
func (a *Aggregator) fetchBias(ctx context.Context, name string, source BiasSource, ticker string) shared.Bias {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	bias, err := source(ctx, ticker)
	if err != nil {
		metrics.SentimentFailuresTotal.WithLabelValues(name).Inc()
		a.logger.Warn().Err(err).Msgf("fetching %s sentiment for %s, defaulting to neutral", name, ticker)
		return shared.Neutral
	}

	return bias
}

// fetchRank calls the iv rank source under the configured timeout. A failed call resolves
// to zero.
func (a *Aggregator) fetchRank(ctx context.Context, ticker string) float64 {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	rank, err := a.cfg.IVRank(ctx, ticker)
	if err != nil {
		metrics.SentimentFailuresTotal.WithLabelValues("iv rank").Inc()
		a.logger.Warn().Err(err).Msgf("fetching iv rank for %s, defaulting to 0", ticker)
		return 0
	}

	switch {
	case rank < 0:
		return 0
	case rank > 100:
		return 100
	default:
		return rank
	}
}

// Snapshot fetches all sentiment sources for the provided ticker concurrently. Source failures
// never fail the snapshot, they resolve to neutral or zero and are logged.
func (a *Aggregator) Snapshot(ctx context.Context, ticker string) Snapshot {
	var snapshot Snapshot
	var wg sync.WaitGroup

	wg.Add(4)
	go func() {
		defer wg.Done()
		snapshot.Flow = a.fetchBias(ctx, "flow", a.cfg.Flow, ticker)
	}()
	go func() {
		defer wg.Done()
		snapshot.Congress = a.fetchBias(ctx, "congress", a.cfg.Congress, ticker)
	}()
	go func() {
		defer wg.Done()
		snapshot.DarkPool = a.fetchBias(ctx, "dark pool", a.cfg.DarkPool, ticker)
	}()
	go func() {
		defer wg.Done()
		snapshot.IVRank = a.fetchRank(ctx, ticker)
	}()
	wg.Wait()

	return snapshot
}

// Flow fetches only the options flow bias for the provided ticker, used when checking
// whether an open position is opposed.
func (a *Aggregator) Flow(ctx context.Context, ticker string) shared.Bias {
	return a.fetchBias(ctx, "flow", a.cfg.Flow, ticker)
}
