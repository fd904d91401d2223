package shared

// SkipReason represents why an evaluation produced no trade.
type SkipReason int

const (
	NoSkip SkipReason = iota
	SkipNoIntraday
	SkipNoDaily
	SkipInsufficientDaily
	SkipInsufficientToday
	SkipBelowMinPrice
	SkipLowRelativeVolume
	SkipNoOpeningRange
	SkipPreSession
	SkipEntryWindowClosed
	SkipNoSetup
	SkipInFlight
	RejectIVRank
)

// String stringifies the provided skip reason.
func (s SkipReason) String() string {
	switch s {
	case NoSkip:
		return "none"
	case SkipNoIntraday:
		return "no intraday data"
	case SkipNoDaily:
		return "no daily data"
	case SkipInsufficientDaily:
		return "insufficient daily history"
	case SkipInsufficientToday:
		return "insufficient bars today"
	case SkipBelowMinPrice:
		return "below minimum price"
	case SkipLowRelativeVolume:
		return "relative volume below floor"
	case SkipNoOpeningRange:
		return "no opening range"
	case SkipPreSession:
		return "before session start"
	case SkipEntryWindowClosed:
		return "entry window closed"
	case SkipNoSetup:
		return "no setup"
	case SkipInFlight:
		return "evaluation in flight"
	case RejectIVRank:
		return "iv rank below minimum"
	default:
		return "unknown"
	}
}

// IsHardGate checks whether the reason is a hard gate rejection rather than a soft skip.
func (s SkipReason) IsHardGate() bool {
	return s == RejectIVRank
}
