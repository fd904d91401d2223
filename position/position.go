package position

import (
	"fmt"
	"time"

	"github.com/dnldd/orbflow/shared"
	"github.com/google/uuid"
)

// NewPosition initializes a new position from the provided entry signal.
func NewPosition(entry *shared.Signal) (*shared.Position, error) {
	if entry == nil {
		return nil, fmt.Errorf("entry signal cannot be nil")
	}

	var direction shared.Direction
	switch entry.Action {
	case shared.EnterLong:
		direction = shared.Long
	case shared.EnterShort:
		direction = shared.Short
	default:
		return nil, fmt.Errorf("unexpected %s action for entry signal", entry.Action.String())
	}

	if entry.Price <= 0 {
		return nil, fmt.Errorf("entry price must be positive, got %f", entry.Price)
	}

	pos := &shared.Position{
		ID:             uuid.New().String(),
		Ticker:         entry.Ticker,
		Direction:      direction,
		EntryPrice:     entry.Price,
		EntryReason:    entry.Reason,
		EntryTimestamp: entry.Timestamp,
	}

	return pos, nil
}

// PNLPercent returns the percentage change of a position entered at the provided price.
func PNLPercent(direction shared.Direction, entryPrice float64, currentPrice float64) (float64, error) {
	if entryPrice == 0 {
		return 0, fmt.Errorf("entry price cannot be zero")
	}

	switch direction {
	case shared.Long:
		return ((currentPrice - entryPrice) / entryPrice) * 100, nil
	case shared.Short:
		return ((entryPrice - currentPrice) / entryPrice) * 100, nil
	default:
		return 0, fmt.Errorf("unknown direction for position: %s", direction.String())
	}
}

// Close closes the provided position using the exit details.
func Close(pos *shared.Position, exitPrice float64, exitReason string, closedOn time.Time) (*shared.ClosedTrade, error) {
	if pos == nil {
		return nil, fmt.Errorf("position cannot be nil")
	}

	pnl, err := PNLPercent(pos.Direction, pos.EntryPrice, exitPrice)
	if err != nil {
		return nil, err
	}

	profitOrLoss := exitPrice - pos.EntryPrice
	if pos.Direction == shared.Short {
		profitOrLoss = pos.EntryPrice - exitPrice
	}

	trade := &shared.ClosedTrade{
		Position:      *pos,
		ExitPrice:     exitPrice,
		ExitReason:    exitReason,
		ExitTimestamp: closedOn,
		ProfitOrLoss:  profitOrLoss,
		PNLPercent:    pnl,
	}

	return trade, nil
}
