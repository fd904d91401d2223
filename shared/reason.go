package shared

import (
	"strings"
)

// Reason represents an entry or exit confirmation.
type Reason int

const (
	ORBBreakout Reason = iota
	ORBBreakdown
	AboveVWAP
	BelowVWAP
	VWAPDip
	VWAPRally
	DailyUptrend
	DailyDowntrend
	BullishFlow
	BearishFlow
	BullishCongress
	BullishDarkPool
	ProfitTarget
	StopLoss
	OpposingFlow
	EODFlatten
)

// String stringifies the provided reason.
func (r Reason) String() string {
	switch r {
	case ORBBreakout:
		return "orb breakout"
	case ORBBreakdown:
		return "orb breakdown"
	case AboveVWAP:
		return "above vwap"
	case BelowVWAP:
		return "below vwap"
	case VWAPDip:
		return "vwap dip"
	case VWAPRally:
		return "vwap rally fade"
	case DailyUptrend:
		return "daily uptrend"
	case DailyDowntrend:
		return "daily downtrend"
	case BullishFlow:
		return "bullish flow"
	case BearishFlow:
		return "bearish flow"
	case BullishCongress:
		return "bullish congress"
	case BullishDarkPool:
		return "bullish dark pool"
	case ProfitTarget:
		return "profit target"
	case StopLoss:
		return "stop loss"
	case OpposingFlow:
		return "opposing flow"
	case EODFlatten:
		return "eod flatten"
	default:
		return "unknown"
	}
}

// JoinReasons stringifies the collection of reasons provided, in order, followed by any
// measured details.
func JoinReasons(reasons []Reason, details ...string) string {
	parts := make([]string, 0, len(reasons)+len(details))
	for idx := range reasons {
		parts = append(parts, reasons[idx].String())
	}
	parts = append(parts, details...)

	return strings.Join(parts, " + ")
}

// Direction represents market direction.
type Direction int

const (
	Long Direction = iota
	Short
)

// String stringifies the provided direction.
func (d Direction) String() string {
	switch d {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "unknown"
	}
}

// ParseDirection parses a stringified direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "long":
		return Long, true
	case "short":
		return Short, true
	default:
		return Long, false
	}
}

// Opposes checks whether the provided bias works against the direction.
func (d Direction) Opposes(bias Bias) bool {
	switch d {
	case Long:
		return bias == Bearish
	case Short:
		return bias == Bullish
	default:
		return false
	}
}
