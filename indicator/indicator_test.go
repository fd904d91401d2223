package indicator

import (
	"testing"
	"time"

	"github.com/dnldd/orbflow/shared"
	"github.com/peterldowns/testy/assert"
)

// newYork loads the exchange location for tests.
func newYork(t *testing.T) *time.Location {
	_, loc, err := shared.NewYorkTime()
	assert.NoError(t, err)
	return loc
}

// minuteBars generates n one-minute bars starting at the provided time.
func minuteBars(start time.Time, n int, volume float64) []shared.Bar {
	bars := make([]shared.Bar, n)
	for idx := range n {
		bars[idx] = shared.Bar{
			Open:   100,
			High:   101,
			Low:    99,
			Close:  100.5,
			Volume: volume,
			Date:   start.Add(time.Minute * time.Duration(idx)),
		}
	}

	return bars
}

// dailyBars generates one daily bar per calendar day ending the day before the provided
// day, with closes linearly spaced between from and to.
func dailyBars(end time.Time, n int, from float64, to float64, volume float64) []shared.Bar {
	bars := make([]shared.Bar, n)
	step := float64(0)
	if n > 1 {
		step = (to - from) / float64(n-1)
	}

	for idx := range n {
		price := from + step*float64(idx)
		bars[idx] = shared.Bar{
			Open:   price * 0.99,
			High:   price * 1.01,
			Low:    price * 0.98,
			Close:  price,
			Volume: volume,
			Date:   end.AddDate(0, 0, idx-n),
		}
	}

	return bars
}
