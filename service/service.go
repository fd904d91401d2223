package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dnldd/orbflow/database"
	"github.com/dnldd/orbflow/market"
	"github.com/dnldd/orbflow/shared"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// Summarizer defines the requirements for summarizing a day of completed trades.
type Summarizer interface {
	// SummarizeDay returns the completed trade totals for the day of the provided time.
	SummarizeDay(ctx context.Context, day time.Time) (*database.TradeSummary, error)
}

var _ Summarizer = (*database.Database)(nil)

// ServiceConfig represents the orbflow service configuration.
type ServiceConfig struct {
	// Scanner evaluates the watchlist.
	Scanner *Scanner
	// Watchlist owns the watchlist snapshots.
	Watchlist *market.Manager
	// ScanInterval is the interval between scans.
	ScanInterval time.Duration
	// RefreshAt is the new york time of day the watchlist is refreshed, formatted as 15:04.
	RefreshAt string
	// Summarizer reports the day's completed trades, optional.
	Summarizer Summarizer
	// SummaryAt is the new york time of day the trade summary is logged, formatted as 15:04.
	SummaryAt string
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *ServiceConfig) Validate() error {
	var errs error

	if cfg.Scanner == nil {
		errs = errors.Join(errs, fmt.Errorf("scanner cannot be nil"))
	}
	if cfg.Watchlist == nil {
		errs = errors.Join(errs, fmt.Errorf("watchlist manager cannot be nil"))
	}
	if cfg.ScanInterval < time.Second {
		errs = errors.Join(errs, fmt.Errorf("scan interval must be at least a second, got %s", cfg.ScanInterval))
	}
	if _, err := shared.ParseClockTime(cfg.RefreshAt); err != nil {
		errs = errors.Join(errs, fmt.Errorf("invalid watchlist refresh time: %w", err))
	}
	if cfg.Summarizer != nil {
		if _, err := shared.ParseClockTime(cfg.SummaryAt); err != nil {
			errs = errors.Join(errs, fmt.Errorf("invalid trade summary time: %w", err))
		}
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Service schedules watchlist refreshes and scans. Refreshes and scans never overlap.
type Service struct {
	cfg       *ServiceConfig
	logger    zerolog.Logger
	scheduler *gocron.Scheduler
	cycleMtx  sync.Mutex
}

// NewService initializes a new orbflow service.
func NewService(cfg *ServiceConfig) (*Service, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating service config: %w", err)
	}

	_, loc, err := shared.NewYorkTime()
	if err != nil {
		return nil, err
	}

	scheduler := gocron.NewScheduler(loc)
	scheduler.SingletonModeAll()

	return &Service{
		cfg:       cfg,
		logger:    cfg.Logger.With().Str("component", "service").Logger(),
		scheduler: scheduler,
	}, nil
}

// RefreshWatchlist refreshes the watchlist. A screener failure keeps the static symbols
// and is logged.
func (s *Service) RefreshWatchlist(ctx context.Context) *market.Watchlist {
	s.cycleMtx.Lock()
	defer s.cycleMtx.Unlock()

	list, err := s.cfg.Watchlist.Refresh(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("refreshing watchlist")
	}

	if list == nil {
		return s.cfg.Watchlist.Current()
	}

	return list
}

// ScanOnce runs a single scan of the current watchlist.
func (s *Service) ScanOnce(ctx context.Context) (*ScanReport, error) {
	s.cycleMtx.Lock()
	defer s.cycleMtx.Unlock()

	return s.cfg.Scanner.Scan(ctx, s.cfg.Watchlist.Current())
}

// logSummary logs the completed trade totals for the current day.
func (s *Service) logSummary(ctx context.Context) {
	now, _, err := shared.NewYorkTime()
	if err != nil {
		s.logger.Error().Err(err).Msg("fetching new york time")
		return
	}

	summary, err := s.cfg.Summarizer.SummarizeDay(ctx, now)
	if err != nil {
		s.logger.Error().Err(err).Msg("summarizing completed trades")
		return
	}

	s.logger.Info().Msgf("%s: %d trades (%d wins, %d losses), long %.2f, short %.2f, total %.2f",
		summary.Day.Format(time.DateOnly), summary.Trades, summary.Wins, summary.Losses,
		summary.LongProfit, summary.ShortProfit, summary.TotalProfit())
}

// schedule registers the service jobs with the scheduler.
func (s *Service) schedule(ctx context.Context) error {
	_, err := s.scheduler.Every(s.cfg.ScanInterval).Do(func() {
		_, err := s.ScanOnce(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("scanning watchlist")
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling scans: %w", err)
	}

	_, err = s.scheduler.Every(1).Day().At(s.cfg.RefreshAt).Do(func() {
		s.RefreshWatchlist(ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduling watchlist refresh: %w", err)
	}

	if s.cfg.Summarizer != nil {
		_, err = s.scheduler.Every(1).Day().At(s.cfg.SummaryAt).Do(func() {
			s.logSummary(ctx)
		})
		if err != nil {
			return fmt.Errorf("scheduling trade summary: %w", err)
		}
	}

	return nil
}

// Run refreshes the watchlist and schedules scans until the provided context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.RefreshWatchlist(ctx)

	err := s.schedule(ctx)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info().Msgf("scanning every %s, watchlist refresh at %s", s.cfg.ScanInterval, s.cfg.RefreshAt)

	<-ctx.Done()

	s.scheduler.Stop()
	s.logger.Info().Msg("service stopped")

	return nil
}
