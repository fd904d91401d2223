package fetch

import (
	"testing"
	"time"

	"github.com/dnldd/orbflow/shared"
	"github.com/peterldowns/testy/assert"
	"github.com/tidwall/gjson"
)

func TestParseBars(t *testing.T) {
	_, loc, err := shared.NewYorkTime()
	assert.NoError(t, err)

	data := `[{"open":10,"close":12,"high":15,"low":8,"volume":5,"date":"2025-02-04 15:05:00"}]`

	// Ensure bars data can be parsed.
	bars, err := ParseBars(gjson.Parse(data).Array(), loc)
	assert.NoError(t, err)
	assert.Equal(t, len(bars), 1)
	assert.Equal(t, bars[0].Open, float64(10))
	assert.Equal(t, bars[0].Close, float64(12))
	assert.Equal(t, bars[0].High, float64(15))
	assert.Equal(t, bars[0].Low, float64(8))
	assert.Equal(t, bars[0].Volume, float64(5))
	assert.Equal(t, bars[0].Date, time.Date(2025, 2, 4, 15, 5, 0, 0, loc))

	// Ensure malformed dates are rejected.
	data = `[{"open":10,"close":12,"high":15,"low":8,"volume":5,"date":"04/02/2025"}]`
	_, err = ParseBars(gjson.Parse(data).Array(), loc)
	assert.Error(t, err)
}

func TestWithinRange(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	bars := []shared.Bar{
		{Date: start.Add(-time.Minute)},
		{Date: start},
		{Date: start.Add(time.Minute)},
		{Date: start.Add(time.Minute * 2)},
	}

	set := withinRange(bars, start, start.Add(time.Minute))
	assert.Equal(t, len(set), 2)
	assert.Equal(t, set[0].Date, start)

	set = withinRange(bars, start, time.Time{})
	assert.Equal(t, len(set), 3)
}
