package market

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dnldd/orbflow/shared"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// ManagerConfig represents the watchlist manager configuration.
type ManagerConfig struct {
	// Static represents the always tracked symbols.
	Static []string
	// Blocked represents symbols that are never scanned.
	Blocked []string
	// Screen fetches additional symbols from a screener, optional.
	Screen func(ctx context.Context) ([]string, error)
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *ManagerConfig) Validate() error {
	var errs error

	if len(cfg.Static) == 0 && cfg.Screen == nil {
		errs = errors.Join(errs, fmt.Errorf("no static symbols or screener provided"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Manager owns the current watchlist snapshot. Refreshing swaps in a new snapshot, snapshots
// already handed out are never mutated.
type Manager struct {
	cfg        *ManagerConfig
	current    atomic.Pointer[Watchlist]
	version    atomic.Uint64
	refreshMtx sync.Mutex
}

// NewManager initializes a new watchlist manager seeded with the static symbols.
func NewManager(cfg *ManagerConfig) (*Manager, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating watchlist manager config: %w", err)
	}

	now, _, err := shared.NewYorkTime()
	if err != nil {
		return nil, err
	}

	mgr := &Manager{cfg: cfg}
	mgr.current.Store(NewWatchlist(mgr.version.Inc(), cfg.Static, cfg.Blocked, now))

	return mgr, nil
}

// Current returns the current watchlist snapshot.
func (m *Manager) Current() *Watchlist {
	return m.current.Load()
}

// Refresh builds a new snapshot from the static symbols and the screener. A screener failure
// keeps the static symbols and is returned alongside the new snapshot.
func (m *Manager) Refresh(ctx context.Context) (*Watchlist, error) {
	m.refreshMtx.Lock()
	defer m.refreshMtx.Unlock()

	symbols := make([]string, 0, len(m.cfg.Static))
	symbols = append(symbols, m.cfg.Static...)

	var screenErr error
	if m.cfg.Screen != nil {
		screened, err := m.cfg.Screen(ctx)
		if err != nil {
			screenErr = fmt.Errorf("screening symbols: %w", err)
		}

		symbols = append(symbols, screened...)
	}

	now, _, err := shared.NewYorkTime()
	if err != nil {
		return nil, err
	}

	list := NewWatchlist(m.version.Inc(), symbols, m.cfg.Blocked, now)
	m.current.Store(list)

	m.cfg.Logger.Info().Msgf("watchlist refreshed to version %d with %d symbols",
		list.Version(), list.Len())

	return list, screenErr
}
