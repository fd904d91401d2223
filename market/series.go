package market

import (
	"fmt"
	"time"

	"github.com/dnldd/orbflow/shared"
)

const (
	// MinDailyBars is the minimum daily history required for an evaluation.
	MinDailyBars = 200
	// MinTodayBars is the minimum number of today's intraday bars required for an evaluation.
	MinTodayBars = 10
)

// Series represents a single symbol's bar series extracted from a batch.
type Series struct {
	Ticker   string
	Intraday []shared.Bar
	Today    []shared.Bar
	Daily    []shared.Bar
}

// Price returns the last close of today's bars.
func (s *Series) Price() float64 {
	if len(s.Today) == 0 {
		return 0
	}

	return s.Today[len(s.Today)-1].Close
}

// SkipError is returned when a series does not satisfy minimum history requirements.
type SkipError struct {
	Ticker string
	Reason shared.SkipReason
	Detail string
}

// Error implements the error interface.
func (e *SkipError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Ticker, e.Reason.String())
	}

	return fmt.Sprintf("%s: %s (%s)", e.Ticker, e.Reason.String(), e.Detail)
}

// TodayBars returns the bars on the same calendar date as now, in order.
func TodayBars(bars []shared.Bar, now time.Time) []shared.Bar {
	today := make([]shared.Bar, 0, len(bars))
	for idx := range bars {
		if shared.SameDay(now, bars[idx].Date) {
			today = append(today, bars[idx])
		}
	}

	return today
}

// ExtractSeries pulls the provided ticker's intraday and daily series from a multi-symbol
// batch and validates minimum history. Symbols absent from the batch or with insufficient
// history return a *SkipError.
func ExtractSeries(ticker string, intraday map[string][]shared.Bar, daily map[string][]shared.Bar, now time.Time) (*Series, error) {
	intradayBars, ok := intraday[ticker]
	if !ok || len(intradayBars) == 0 {
		return nil, &SkipError{Ticker: ticker, Reason: shared.SkipNoIntraday}
	}

	dailyBars, ok := daily[ticker]
	if !ok || len(dailyBars) == 0 {
		return nil, &SkipError{Ticker: ticker, Reason: shared.SkipNoDaily}
	}

	if len(dailyBars) < MinDailyBars {
		return nil, &SkipError{Ticker: ticker, Reason: shared.SkipInsufficientDaily,
			Detail: fmt.Sprintf("%d < %d", len(dailyBars), MinDailyBars)}
	}

	today := TodayBars(intradayBars, now)
	if len(today) < MinTodayBars {
		return nil, &SkipError{Ticker: ticker, Reason: shared.SkipInsufficientToday,
			Detail: fmt.Sprintf("%d < %d", len(today), MinTodayBars)}
	}

	series := &Series{
		Ticker:   ticker,
		Intraday: intradayBars,
		Today:    today,
		Daily:    dailyBars,
	}

	return series, nil
}

// ExtractHeldSeries pulls the series of a ticker with an open position. Exits only need a
// current price so a single bar today is enough; daily history is attached when present.
func ExtractHeldSeries(ticker string, intraday map[string][]shared.Bar, daily map[string][]shared.Bar, now time.Time) (*Series, error) {
	intradayBars, ok := intraday[ticker]
	if !ok || len(intradayBars) == 0 {
		return nil, &SkipError{Ticker: ticker, Reason: shared.SkipNoIntraday}
	}

	today := TodayBars(intradayBars, now)
	if len(today) == 0 {
		return nil, &SkipError{Ticker: ticker, Reason: shared.SkipInsufficientToday,
			Detail: "no bars today"}
	}

	series := &Series{
		Ticker:   ticker,
		Intraday: intradayBars,
		Today:    today,
		Daily:    daily[ticker],
	}

	return series, nil
}
