package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/dnldd/orbflow/engine"
	"github.com/dnldd/orbflow/market"
	"github.com/dnldd/orbflow/metrics"
	"github.com/dnldd/orbflow/shared"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

const (
	// defaultWorkers is the default number of concurrent symbol evaluations.
	defaultWorkers = 8
	// defaultDailyLookback is the default calendar lookback for daily bars, enough for
	// 200 sessions.
	defaultDailyLookback = time.Hour * 24 * 400
	// defaultFetchTimeout is the default timeout for a batch bar fetch.
	defaultFetchTimeout = time.Second * 30
)

// Evaluator defines the requirements for evaluating a symbol's series.
type Evaluator interface {
	// Evaluate runs the position state machine for the provided series.
	Evaluate(ctx context.Context, series *market.Series) (*engine.Decision, error)
}

var _ Evaluator = (*engine.Engine)(nil)

// ScannerConfig represents the scanner configuration.
type ScannerConfig struct {
	// Bars fetches intraday and daily bars for the watchlist.
	Bars shared.BarFetcher
	// IsMarketOpen reports whether the market is open, optional. Scans are skipped while
	// the market is closed.
	IsMarketOpen func(ctx context.Context) (bool, error)
	// Evaluator evaluates each symbol's series.
	Evaluator Evaluator
	// Store is the position store. Tickers with open positions are scanned even when they
	// have left the watchlist.
	Store shared.PositionStorer
	// Workers is the maximum number of concurrent evaluations, optional.
	Workers int
	// DailyLookback is how far back daily bars are fetched, optional.
	DailyLookback time.Duration
	// FetchTimeout bounds each batch bar fetch, optional.
	FetchTimeout time.Duration
	// Now returns the current time, optional.
	Now func() time.Time
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *ScannerConfig) Validate() error {
	var errs error

	if cfg.Bars == nil {
		errs = errors.Join(errs, fmt.Errorf("bar fetcher cannot be nil"))
	}
	if cfg.Evaluator == nil {
		errs = errors.Join(errs, fmt.Errorf("evaluator cannot be nil"))
	}
	if cfg.Store == nil {
		errs = errors.Join(errs, fmt.Errorf("position store cannot be nil"))
	}
	if cfg.Workers < 0 {
		errs = errors.Join(errs, fmt.Errorf("workers cannot be negative"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Outcome represents the result of evaluating a single symbol.
type Outcome struct {
	Ticker   string
	Decision *engine.Decision
	Err      error
}

// ScanReport summarizes a scan.
type ScanReport struct {
	WatchlistVersion uint64
	WatchlistCreated time.Time
	MarketClosed     bool
	// Held lists the tickers with open positions at the start of the scan.
	Held     []string
	Outcomes []Outcome
}

// Count returns the number of outcomes with the provided decision kind.
func (r *ScanReport) Count(kind engine.DecisionKind) int {
	var n int
	for idx := range r.Outcomes {
		if r.Outcomes[idx].Decision != nil && r.Outcomes[idx].Decision.Kind == kind {
			n++
		}
	}

	return n
}

// Errors returns the number of failed evaluations.
func (r *ScanReport) Errors() int {
	var n int
	for idx := range r.Outcomes {
		if r.Outcomes[idx].Err != nil {
			n++
		}
	}

	return n
}

// Scanner fans out one evaluation per watchlist symbol and open position.
type Scanner struct {
	cfg    *ScannerConfig
	logger zerolog.Logger
	loc    *time.Location
	scans  atomic.Uint64
}

// NewScanner initializes a new scanner.
func NewScanner(cfg *ScannerConfig) (*Scanner, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating scanner config: %w", err)
	}

	_, loc, err := shared.NewYorkTime()
	if err != nil {
		return nil, err
	}

	if cfg.Workers == 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.DailyLookback == 0 {
		cfg.DailyLookback = defaultDailyLookback
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Scanner{
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "scanner").Logger(),
		loc:    loc,
	}, nil
}

// fetch fetches bars for the provided symbols under the fetch timeout.
func (s *Scanner) fetch(ctx context.Context, symbols []string, timeframe shared.Timeframe, start time.Time, end time.Time) (map[string][]shared.Bar, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	bars, err := s.cfg.Bars.FetchBars(fetchCtx, symbols, timeframe, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetching %s bars: %w", timeframe, err)
	}

	return bars, nil
}

// Scan evaluates every symbol of the provided watchlist along with every ticker holding an
// open position. A failing symbol never cancels its siblings, only market clock, store and
// batch fetch failures are returned as errors.
func (s *Scanner) Scan(ctx context.Context, list *market.Watchlist) (*ScanReport, error) {
	if list == nil {
		return nil, fmt.Errorf("watchlist cannot be nil")
	}

	report := &ScanReport{
		WatchlistVersion: list.Version(),
		WatchlistCreated: list.CreatedOn(),
	}
	seq := s.scans.Inc()

	if s.cfg.IsMarketOpen != nil {
		open, err := s.cfg.IsMarketOpen(ctx)
		if err != nil {
			metrics.ScansTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("checking market clock: %w", err)
		}

		if !open {
			s.logger.Info().Msgf("scan #%d skipped, market is closed", seq)
			metrics.ScansTotal.WithLabelValues("market_closed").Inc()
			report.MarketClosed = true
			return report, nil
		}
	}

	held, err := s.cfg.Store.ListOpen(ctx)
	if err != nil {
		metrics.ScansTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("listing open positions: %w", err)
	}
	report.Held = held

	symbols := list.Symbols()
	heldSet := make(map[string]struct{}, len(held))
	for _, ticker := range held {
		heldSet[ticker] = struct{}{}
		if !list.Contains(ticker) {
			symbols = append(symbols, ticker)
		}
	}

	if len(symbols) == 0 {
		metrics.ScansTotal.WithLabelValues("empty").Inc()
		return report, nil
	}

	now := s.cfg.Now().In(s.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	intraday, err := s.fetch(ctx, symbols, shared.OneMinute, dayStart, now)
	if err != nil {
		metrics.ScansTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	daily, err := s.fetch(ctx, symbols, shared.OneDay, now.Add(-s.cfg.DailyLookback), now)
	if err != nil {
		metrics.ScansTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	report.Outcomes = make([]Outcome, len(symbols))
	sem := make(chan struct{}, s.cfg.Workers)
	var wg sync.WaitGroup

	for idx, ticker := range symbols {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int, ticker string) {
			defer func() {
				<-sem
				wg.Done()
			}()

			_, isHeld := heldSet[ticker]
			report.Outcomes[idx] = s.evaluate(ctx, ticker, isHeld, intraday, daily, now)
		}(idx, ticker)
	}

	wg.Wait()

	s.record(ctx, seq, report)

	return report, nil
}

// evaluate extracts and evaluates a single symbol's series, recovering panics. Held tickers
// only need a current price to be evaluated for an exit.
func (s *Scanner) evaluate(ctx context.Context, ticker string, held bool, intraday map[string][]shared.Bar, daily map[string][]shared.Bar, now time.Time) (outcome Outcome) {
	outcome.Ticker = ticker

	defer func() {
		if r := recover(); r != nil {
			metrics.EvaluationErrorsTotal.Inc()
			s.logger.Error().Str("stack", string(debug.Stack())).
				Msgf("evaluating %s panicked: %v", ticker, r)
			outcome.Decision = nil
			outcome.Err = fmt.Errorf("evaluating %s panicked: %v", ticker, r)
		}
	}()

	extract := market.ExtractSeries
	if held {
		extract = market.ExtractHeldSeries
	}

	series, err := extract(ticker, intraday, daily, now)
	if err != nil {
		var skipErr *market.SkipError
		if errors.As(err, &skipErr) {
			outcome.Decision = &engine.Decision{
				Ticker: ticker,
				Kind:   engine.Skip,
				Reason: skipErr.Reason,
				Detail: skipErr.Detail,
			}
			return outcome
		}

		metrics.EvaluationErrorsTotal.Inc()
		outcome.Err = err
		return outcome
	}

	decision, err := s.cfg.Evaluator.Evaluate(ctx, series)
	if err != nil {
		metrics.EvaluationErrorsTotal.Inc()
		s.logger.Error().Err(err).Msgf("evaluating %s", ticker)
		outcome.Err = err
		return outcome
	}

	outcome.Decision = decision
	return outcome
}

// record logs and counts the outcomes of a completed scan.
func (s *Scanner) record(ctx context.Context, seq uint64, report *ScanReport) {
	for idx := range report.Outcomes {
		outcome := &report.Outcomes[idx]
		if outcome.Decision == nil {
			continue
		}

		metrics.DecisionsTotal.WithLabelValues(outcome.Decision.Kind.String(),
			outcome.Decision.Reason.String()).Inc()

		switch outcome.Decision.Kind {
		case engine.Enter, engine.Exit:
			s.logger.Info().Msg(outcome.Decision.String())
		default:
			s.logger.Debug().Msg(outcome.Decision.String())
		}
	}

	result := "ok"
	if report.Errors() > 0 {
		result = "partial"
	}
	metrics.ScansTotal.WithLabelValues(result).Inc()

	open, err := s.cfg.Store.ListOpen(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("listing open positions")
	} else {
		metrics.OpenPositions.Set(float64(len(open)))
	}

	s.logger.Info().Msgf("scan #%d of watchlist v%d (%s) done: %d symbols, %d held, %d entries, "+
		"%d exits, %d errors", seq, report.WatchlistVersion,
		report.WatchlistCreated.Format(time.Kitchen), len(report.Outcomes), len(report.Held),
		report.Count(engine.Enter), report.Count(engine.Exit), report.Errors())
}
