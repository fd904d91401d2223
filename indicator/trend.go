package indicator

import (
	"github.com/dnldd/orbflow/shared"
)

const (
	// fastSMAPeriod is the fast moving average period of the daily trend.
	fastSMAPeriod = 50
	// slowSMAPeriod is the slow moving average period of the daily trend.
	slowSMAPeriod = 200
)

// SMA returns the simple moving average of the last period values.
func SMA(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}

	var sum float64
	for _, v := range values[len(values)-period:] {
		sum += v
	}

	return sum / float64(period), true
}

// Trend classifies the daily trend from the moving average stack. It is up when
// close > SMA(50) > SMA(200), down when close < SMA(50) < SMA(200) and flat otherwise.
// Fewer than 200 daily bars carry no opinion and are flat.
func Trend(daily []shared.Bar) shared.Trend {
	if len(daily) < slowSMAPeriod {
		return shared.FlatTrend
	}

	closes := shared.Closes(daily)
	fast, _ := SMA(closes, fastSMAPeriod)
	slow, _ := SMA(closes, slowSMAPeriod)
	last := closes[len(closes)-1]

	switch {
	case last > fast && fast > slow:
		return shared.UpTrend
	case last < fast && fast < slow:
		return shared.DownTrend
	default:
		return shared.FlatTrend
	}
}
