package fetch

import (
	"fmt"
	"time"

	"github.com/dnldd/orbflow/shared"
	"github.com/tidwall/gjson"
)

// ParseBars parses bars from the provided json data. Dates use the "2006-01-02 15:04:05"
// layout in the provided location.
func ParseBars(data []gjson.Result, loc *time.Location) ([]shared.Bar, error) {
	bars := make([]shared.Bar, len(data))

	for idx := range data {
		var bar shared.Bar

		bar.Open = data[idx].Get("open").Float()
		bar.Low = data[idx].Get("low").Float()
		bar.High = data[idx].Get("high").Float()
		bar.Close = data[idx].Get("close").Float()
		bar.Volume = data[idx].Get("volume").Float()

		dt, err := time.ParseInLocation(shared.DateLayout, data[idx].Get("date").String(), loc)
		if err != nil {
			return nil, fmt.Errorf("parsing bar date: %w", err)
		}

		bar.Date = dt
		bars[idx] = bar
	}

	return bars, nil
}

// withinRange returns the bars dated within [start, end]. A zero end is unbounded.
func withinRange(bars []shared.Bar, start time.Time, end time.Time) []shared.Bar {
	set := make([]shared.Bar, 0, len(bars))
	for idx := range bars {
		date := bars[idx].Date
		if date.Before(start) {
			continue
		}
		if !end.IsZero() && date.After(end) {
			continue
		}

		set = append(set, bars[idx])
	}

	return set
}
