package market

import (
	"context"
	"errors"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog/log"
)

func TestManagerConfigValidate(t *testing.T) {
	cfg := &ManagerConfig{}
	err := cfg.Validate()
	assert.Error(t, err)

	cfg = &ManagerConfig{
		Static: []string{"AAPL"},
		Logger: &log.Logger,
	}
	err = cfg.Validate()
	assert.NoError(t, err)
}

func TestManagerRefresh(t *testing.T) {
	var screened []string
	var screenErr error

	cfg := &ManagerConfig{
		Static:  []string{"AAPL", "MSFT"},
		Blocked: []string{"GME"},
		Screen: func(ctx context.Context) ([]string, error) {
			return screened, screenErr
		},
		Logger: &log.Logger,
	}

	mgr, err := NewManager(cfg)
	assert.NoError(t, err)

	// Ensure the manager starts with the static symbols.
	first := mgr.Current()
	assert.Equal(t, first.Version(), uint64(1))
	assert.Equal(t, first.Len(), 2)

	// Ensure a refresh merges screened symbols into a new snapshot without touching the old one.
	screened = []string{"NVDA", "GME"}
	second, err := mgr.Refresh(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, second.Version(), uint64(2))
	assert.Equal(t, second.Len(), 3)
	assert.True(t, second.Contains("NVDA"))
	assert.False(t, second.Contains("GME"))
	assert.Equal(t, first.Len(), 2)
	assert.Equal(t, mgr.Current().Version(), uint64(2))

	// Ensure a screener failure falls back to the static symbols.
	screenErr = errors.New("screener unavailable")
	screened = nil
	third, err := mgr.Refresh(context.Background())
	assert.Error(t, err)
	assert.Equal(t, third.Version(), uint64(3))
	assert.Equal(t, third.Len(), 2)
	assert.Equal(t, mgr.Current().Version(), uint64(3))
}
