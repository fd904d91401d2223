package indicator

import (
	"time"

	"github.com/dnldd/orbflow/shared"
)

const (
	// rvolWindow is the number of trailing sessions averaged for relative volume.
	rvolWindow = 20
	// minRVOLSessions is the minimum number of valid trailing sessions required.
	minRVOLSessions = 10
)

// RelativeVolume returns today's cumulative volume relative to the mean daily volume of the
// trailing sessions before today.
//
// Zero is returned when fewer than 10 valid trailing sessions are available, callers must
// treat it as unknown and reject setups requiring volume confirmation.
func RelativeVolume(intraday []shared.Bar, daily []shared.Bar, today time.Time) float64 {
	var todayVolume float64
	for idx := range intraday {
		if shared.SameDay(today, intraday[idx].Date) {
			todayVolume += intraday[idx].Volume
		}
	}

	// Walk back from the most recent session, skipping today's partial daily bar.
	var sum float64
	var sessions int
	for idx := len(daily) - 1; idx >= 0 && sessions < rvolWindow; idx-- {
		bar := daily[idx]
		if shared.SameDay(today, bar.Date) || bar.Date.After(today) {
			continue
		}
		if bar.Volume <= 0 {
			continue
		}

		sum += bar.Volume
		sessions++
	}

	if sessions < minRVOLSessions {
		return 0
	}

	average := sum / float64(sessions)
	if average == 0 {
		return 0
	}

	return todayVolume / average
}
