package indicator

import (
	"time"

	"github.com/dnldd/orbflow/shared"
)

// OpeningRange returns the high and low of the bars within [open, open+window], both bounds
// inclusive. The boolean is false when no bars fall in the window, for example when called
// before the session's data has arrived.
func OpeningRange(today []shared.Bar, open time.Time, window time.Duration) (float64, float64, bool) {
	end := open.Add(window)

	var high, low float64
	var found bool
	for idx := range today {
		date := today[idx].Date
		if date.Before(open) || date.After(end) {
			continue
		}

		if !found {
			high = today[idx].High
			low = today[idx].Low
			found = true
			continue
		}

		if today[idx].High > high {
			high = today[idx].High
		}
		if today[idx].Low < low {
			low = today[idx].Low
		}
	}

	return high, low, found
}
