package sentiment

import (
	"github.com/dnldd/orbflow/shared"
)

// Snapshot represents the point-in-time sentiment read for a ticker. Snapshots are transient
// and never persisted.
type Snapshot struct {
	Flow     shared.Bias
	Congress shared.Bias
	DarkPool shared.Bias
	IVRank   float64
}

// ConfirmsLong checks whether the snapshot confirms a long entry. Options flow must be
// bullish and at least one of congress trades or dark pool prints must agree.
func (s *Snapshot) ConfirmsLong() (bool, []shared.Reason) {
	if s.Flow != shared.Bullish {
		return false, nil
	}

	reasons := []shared.Reason{shared.BullishFlow}
	if s.Congress == shared.Bullish {
		reasons = append(reasons, shared.BullishCongress)
	}
	if s.DarkPool == shared.Bullish {
		reasons = append(reasons, shared.BullishDarkPool)
	}

	if len(reasons) == 1 {
		return false, nil
	}

	return true, reasons
}

// ConfirmsShort checks whether the snapshot confirms a short entry. Only bearish options
// flow is required.
func (s *Snapshot) ConfirmsShort() (bool, []shared.Reason) {
	if s.Flow != shared.Bearish {
		return false, nil
	}

	return true, []shared.Reason{shared.BearishFlow}
}

// Confirms checks whether the snapshot confirms an entry in the provided direction.
func (s *Snapshot) Confirms(direction shared.Direction) (bool, []shared.Reason) {
	switch direction {
	case shared.Long:
		return s.ConfirmsLong()
	case shared.Short:
		return s.ConfirmsShort()
	default:
		return false, nil
	}
}

// PassesIVRank checks the snapshot's iv rank against the provided minimum.
func (s *Snapshot) PassesIVRank(min float64) bool {
	return s.IVRank >= min
}
