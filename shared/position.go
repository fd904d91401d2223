package shared

import (
	"time"
)

// Position represents the single open position tracked for a ticker.
type Position struct {
	ID             string
	Ticker         string
	Direction      Direction
	EntryPrice     float64
	EntryReason    string
	EntryTimestamp time.Time
}

// ClosedTrade represents a position that has been exited.
type ClosedTrade struct {
	Position
	ExitPrice     float64
	ExitReason    string
	ExitTimestamp time.Time
	ProfitOrLoss  float64
	PNLPercent    float64
}

// InactiveTicker records why a flat ticker did not enter during an evaluation.
type InactiveTicker struct {
	Ticker          string
	LongReason      string
	ShortReason     string
	IndicatorValues map[string]float64
	UpdatedOn       time.Time
}
