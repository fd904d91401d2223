package engine

import (
	"fmt"

	"github.com/dnldd/orbflow/sentiment"
	"github.com/dnldd/orbflow/shared"
)

// DecisionKind represents the outcome class of an evaluation.
type DecisionKind int

const (
	Skip DecisionKind = iota
	Reject
	Hold
	Enter
	Exit
)

// String stringifies the provided decision kind.
func (k DecisionKind) String() string {
	switch k {
	case Skip:
		return "skip"
	case Reject:
		return "reject"
	case Hold:
		return "hold"
	case Enter:
		return "enter"
	case Exit:
		return "exit"
	default:
		return "unknown"
	}
}

// Indicators represents the indicator values computed during an evaluation.
type Indicators struct {
	Price     float64
	VWAP      float64
	RVOL      float64
	RVOLFloor float64
	ORBHigh   float64
	ORBLow    float64
	Trend     shared.Trend
}

// Values returns the indicator values keyed by name.
func (i *Indicators) Values() map[string]float64 {
	return map[string]float64{
		"price":      i.Price,
		"vwap":       i.VWAP,
		"rvol":       i.RVOL,
		"rvol_floor": i.RVOLFloor,
		"orb_high":   i.ORBHigh,
		"orb_low":    i.ORBLow,
	}
}

// Decision represents the typed result of evaluating a ticker.
type Decision struct {
	Ticker     string
	Kind       DecisionKind
	Phase      Phase
	Reason     shared.SkipReason
	Detail     string
	Signal     *shared.Signal
	Position   *shared.Position
	Indicators Indicators
	Sentiment  *sentiment.Snapshot
	// DeliveryErr is set when the signal was committed but could not be delivered.
	DeliveryErr error
}

// String stringifies the decision.
func (d *Decision) String() string {
	switch d.Kind {
	case Enter, Exit:
		return fmt.Sprintf("%s %s %s @ %.2f (%s)", d.Kind, d.Ticker, d.Signal.Action,
			d.Signal.Price, d.Signal.Reason)
	case Hold:
		return fmt.Sprintf("hold %s: %s", d.Ticker, d.Detail)
	default:
		if d.Detail == "" {
			return fmt.Sprintf("%s %s: %s", d.Kind, d.Ticker, d.Reason)
		}
		return fmt.Sprintf("%s %s: %s (%s)", d.Kind, d.Ticker, d.Reason, d.Detail)
	}
}
