package engine

import (
	"fmt"

	"github.com/dnldd/orbflow/shared"
)

// checkSetup evaluates the technical setup of the phase for the provided direction. It returns
// the confirmations that fired, or a description of the first unmet condition.
func checkSetup(phase Phase, direction shared.Direction, ind *Indicators) ([]shared.Reason, string) {
	switch phase {
	case OpeningRange:
		switch direction {
		case shared.Long:
			if ind.Price <= ind.ORBHigh {
				return nil, fmt.Sprintf("price %.2f not above orb high %.2f", ind.Price, ind.ORBHigh)
			}
			if ind.Price <= ind.VWAP {
				return nil, fmt.Sprintf("price %.2f not above vwap %.2f", ind.Price, ind.VWAP)
			}
			if ind.Trend != shared.UpTrend {
				return nil, fmt.Sprintf("daily trend is %s", ind.Trend)
			}
			return []shared.Reason{shared.ORBBreakout, shared.AboveVWAP, shared.DailyUptrend}, ""

		case shared.Short:
			if ind.Price >= ind.ORBLow {
				return nil, fmt.Sprintf("price %.2f not below orb low %.2f", ind.Price, ind.ORBLow)
			}
			if ind.Price >= ind.VWAP {
				return nil, fmt.Sprintf("price %.2f not below vwap %.2f", ind.Price, ind.VWAP)
			}
			if ind.Trend != shared.DownTrend {
				return nil, fmt.Sprintf("daily trend is %s", ind.Trend)
			}
			return []shared.Reason{shared.ORBBreakdown, shared.BelowVWAP, shared.DailyDowntrend}, ""
		}

	case PostOpeningRange:
		switch direction {
		case shared.Long:
			if ind.Price >= ind.VWAP {
				return nil, fmt.Sprintf("price %.2f not below vwap %.2f", ind.Price, ind.VWAP)
			}
			if ind.Trend != shared.UpTrend {
				return nil, fmt.Sprintf("daily trend is %s", ind.Trend)
			}
			return []shared.Reason{shared.VWAPDip, shared.DailyUptrend}, ""

		case shared.Short:
			if ind.Price <= ind.VWAP {
				return nil, fmt.Sprintf("price %.2f not above vwap %.2f", ind.Price, ind.VWAP)
			}
			if ind.Trend != shared.DownTrend {
				return nil, fmt.Sprintf("daily trend is %s", ind.Trend)
			}
			return []shared.Reason{shared.VWAPRally, shared.DailyDowntrend}, ""
		}
	}

	return nil, fmt.Sprintf("no %s setup during %s", direction, phase)
}
