package engine

import (
	"time"
)

// Phase represents the trading phase of the session.
type Phase int

const (
	PreSession Phase = iota
	OpeningRange
	PostOpeningRange
	PastSessionEnd
)

// String stringifies the provided phase.
func (p Phase) String() string {
	switch p {
	case PreSession:
		return "pre-session"
	case OpeningRange:
		return "opening range"
	case PostOpeningRange:
		return "post opening range"
	case PastSessionEnd:
		return "past session end"
	default:
		return "unknown"
	}
}

// PhaseAt returns the session phase of the provided exchange time. The opening range phase
// includes its end time, the trading end belongs to the closed phase.
func (cfg *StrategyConfig) PhaseAt(now time.Time) Phase {
	switch {
	case now.Before(cfg.SessionStart.On(now)):
		return PreSession
	case !now.After(cfg.ORBPhaseEnd.On(now)):
		return OpeningRange
	case now.Before(cfg.TradingEnd.On(now)):
		return PostOpeningRange
	default:
		return PastSessionEnd
	}
}

// EntryOpen checks whether entries are still taken at the provided exchange time.
func (cfg *StrategyConfig) EntryOpen(now time.Time) bool {
	return !now.After(cfg.EntryCutoff.On(now))
}
