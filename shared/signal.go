package shared

import (
	"time"

	"github.com/google/uuid"
)

// Action represents the action a signal announces.
type Action int

const (
	EnterLong Action = iota
	EnterShort
	ExitLong
	ExitShort
)

// String stringifies the provided action.
func (a Action) String() string {
	switch a {
	case EnterLong:
		return "enter_long"
	case EnterShort:
		return "enter_short"
	case ExitLong:
		return "exit_long"
	case ExitShort:
		return "exit_short"
	default:
		return "unknown"
	}
}

// OrderVerb returns the broker order verb consumers of signals expect for the action.
func (a Action) OrderVerb() string {
	switch a {
	case EnterLong:
		return "buy_to_open"
	case EnterShort:
		return "sell_to_open"
	case ExitLong:
		return "sell_to_close"
	case ExitShort:
		return "buy_to_close"
	default:
		return "unknown"
	}
}

// EntryAction returns the entry action for the provided direction.
func EntryAction(d Direction) Action {
	if d == Short {
		return EnterShort
	}

	return EnterLong
}

// ExitAction returns the exit action for the provided direction.
func ExitAction(d Direction) Action {
	if d == Short {
		return ExitShort
	}

	return ExitLong
}

// Signal represents an announced trading decision. Signals are never mutated once created.
type Signal struct {
	ID        string
	Ticker    string
	Action    Action
	Reason    string
	Price     float64
	Timestamp time.Time
	Extra     map[string]string
}

// NewSignal initializes a new signal.
func NewSignal(ticker string, action Action, reason string, price float64, created time.Time) *Signal {
	return &Signal{
		ID:        uuid.New().String(),
		Ticker:    ticker,
		Action:    action,
		Reason:    reason,
		Price:     price,
		Timestamp: created,
	}
}
