package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/dnldd/orbflow/shared"
	"github.com/rs/zerolog"
)

// StrategyConfig represents the tunable entry and exit parameters.
type StrategyConfig struct {
	// MinPrice is the minimum share price considered for entries.
	MinPrice float64
	// MinIVRank is the minimum iv rank required for entries.
	MinIVRank float64
	// ORBMinutes is the opening range window length after the session start.
	ORBMinutes int
	// ProfitTargetPercent is the unrealized gain at which opposing flow closes a position.
	ProfitTargetPercent float64
	// StopLossPercent is the unrealized loss at which opposing flow closes a position.
	StopLossPercent float64
	// SessionStart is the regular session open.
	SessionStart shared.ClockTime
	// ORBPhaseEnd is the last time breakout entries are taken.
	ORBPhaseEnd shared.ClockTime
	// EntryCutoff is the last time any entry is taken.
	EntryCutoff shared.ClockTime
	// TradingEnd is the time every open position is flattened.
	TradingEnd shared.ClockTime
}

// DefaultStrategyConfig returns the default strategy parameters.
func DefaultStrategyConfig() StrategyConfig {
	return StrategyConfig{
		MinPrice:            5,
		MinIVRank:           70,
		ORBMinutes:          15,
		ProfitTargetPercent: 2,
		StopLossPercent:     2,
		SessionStart:        shared.MustParseClockTime("09:30"),
		ORBPhaseEnd:         shared.MustParseClockTime("10:30"),
		EntryCutoff:         shared.MustParseClockTime("15:30"),
		TradingEnd:          shared.MustParseClockTime("15:50"),
	}
}

// Validate asserts the config sane inputs.
func (cfg *StrategyConfig) Validate() error {
	var errs error

	if cfg.MinPrice < 0 {
		errs = errors.Join(errs, fmt.Errorf("min price cannot be negative"))
	}
	if cfg.MinIVRank < 0 || cfg.MinIVRank > 100 {
		errs = errors.Join(errs, fmt.Errorf("min iv rank must be within [0, 100], got %f", cfg.MinIVRank))
	}
	if cfg.ORBMinutes <= 0 {
		errs = errors.Join(errs, fmt.Errorf("orb minutes must be positive"))
	}
	if cfg.ProfitTargetPercent <= 0 {
		errs = errors.Join(errs, fmt.Errorf("profit target percent must be positive"))
	}
	if cfg.StopLossPercent <= 0 {
		errs = errors.Join(errs, fmt.Errorf("stop loss percent must be positive"))
	}
	if !cfg.SessionStart.Before(cfg.ORBPhaseEnd) {
		errs = errors.Join(errs, fmt.Errorf("session start %s must be before orb phase end %s",
			cfg.SessionStart, cfg.ORBPhaseEnd))
	}
	if cfg.EntryCutoff.Before(cfg.ORBPhaseEnd) {
		errs = errors.Join(errs, fmt.Errorf("entry cutoff %s cannot be before orb phase end %s",
			cfg.EntryCutoff, cfg.ORBPhaseEnd))
	}
	if !cfg.EntryCutoff.Before(cfg.TradingEnd) {
		errs = errors.Join(errs, fmt.Errorf("entry cutoff %s must be before trading end %s",
			cfg.EntryCutoff, cfg.TradingEnd))
	}

	return errs
}

// ORBWindow returns the opening range window length.
func (cfg *StrategyConfig) ORBWindow() time.Duration {
	return time.Minute * time.Duration(cfg.ORBMinutes)
}

// EngineConfig represents the position engine configuration.
type EngineConfig struct {
	// Strategy represents the entry and exit parameters.
	Strategy StrategyConfig
	// Store holds the open positions.
	Store shared.PositionStorer
	// Emitter delivers signals.
	Emitter shared.SignalEmitter
	// Sentiment reads directional sentiment.
	Sentiment SentimentReader
	// Journal records closed trades and inactive tickers, optional.
	Journal shared.TradeJournal
	// Now returns the current time, optional.
	Now func() time.Time
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *EngineConfig) Validate() error {
	var errs error

	err := cfg.Strategy.Validate()
	if err != nil {
		errs = errors.Join(errs, err)
	}
	if cfg.Store == nil {
		errs = errors.Join(errs, fmt.Errorf("position store cannot be nil"))
	}
	if cfg.Emitter == nil {
		errs = errors.Join(errs, fmt.Errorf("signal emitter cannot be nil"))
	}
	if cfg.Sentiment == nil {
		errs = errors.Join(errs, fmt.Errorf("sentiment reader cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}
