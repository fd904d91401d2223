package position

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dnldd/orbflow/shared"
)

// MemoryStore tracks open positions in memory, keyed by ticker.
type MemoryStore struct {
	positions   map[string]*shared.Position
	positionMtx sync.RWMutex
}

var _ shared.PositionStorer = (*MemoryStore)(nil)

// NewMemoryStore initializes a new in-memory position store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		positions: make(map[string]*shared.Position),
	}
}

// Get returns the open position for the ticker, nil if there is none.
func (s *MemoryStore) Get(ctx context.Context, ticker string) (*shared.Position, error) {
	s.positionMtx.RLock()
	defer s.positionMtx.RUnlock()

	pos, ok := s.positions[ticker]
	if !ok {
		return nil, nil
	}

	cp := *pos
	return &cp, nil
}

// Put stores the provided position. A ticker can only have one open position, a different
// position for an already tracked ticker is rejected.
func (s *MemoryStore) Put(ctx context.Context, position *shared.Position) error {
	if position == nil {
		return fmt.Errorf("position cannot be nil")
	}

	s.positionMtx.Lock()
	defer s.positionMtx.Unlock()

	existing, ok := s.positions[position.Ticker]
	if ok && existing.ID != position.ID {
		return fmt.Errorf("%s already has an open %s position (%s)",
			position.Ticker, existing.Direction.String(), existing.ID)
	}

	cp := *position
	s.positions[position.Ticker] = &cp

	return nil
}

// Delete removes the open position for the ticker.
func (s *MemoryStore) Delete(ctx context.Context, ticker string) error {
	s.positionMtx.Lock()
	delete(s.positions, ticker)
	s.positionMtx.Unlock()

	return nil
}

// ListOpen returns the tickers with open positions, sorted.
func (s *MemoryStore) ListOpen(ctx context.Context) ([]string, error) {
	s.positionMtx.RLock()
	tickers := make([]string, 0, len(s.positions))
	for k := range s.positions {
		tickers = append(tickers, k)
	}
	s.positionMtx.RUnlock()

	slices.Sort(tickers)

	return tickers, nil
}
