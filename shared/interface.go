package shared

import (
	"context"
	"time"
)

// BarFetcher defines the requirements for fetching market bars.
type BarFetcher interface {
	// FetchBars fetches bars for the provided symbols. Symbols with no data may be omitted
	// from the result.
	FetchBars(ctx context.Context, symbols []string, timeframe Timeframe, start time.Time, end time.Time) (map[string][]Bar, error)
}

// PositionStorer defines the requirements for storing open positions.
type PositionStorer interface {
	// Get returns the open position for the ticker, nil if there is none.
	Get(ctx context.Context, ticker string) (*Position, error)
	// Put stores the provided position.
	Put(ctx context.Context, position *Position) error
	// Delete removes the open position for the ticker.
	Delete(ctx context.Context, ticker string) error
	// ListOpen returns the tickers with open positions.
	ListOpen(ctx context.Context) ([]string, error)
}

// TradeJournal defines the requirements for recording trade history.
type TradeJournal interface {
	// RecordClosedTrade stores the provided closed trade.
	RecordClosedTrade(ctx context.Context, trade *ClosedTrade) error
	// RecordInactiveTicker stores why a ticker did not enter.
	RecordInactiveTicker(ctx context.Context, inactive *InactiveTicker) error
}

// SignalEmitter defines the requirements for delivering signals.
type SignalEmitter interface {
	// Emit delivers the provided signal.
	Emit(ctx context.Context, signal *Signal) error
}
