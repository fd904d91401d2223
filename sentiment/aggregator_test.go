package sentiment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dnldd/orbflow/shared"
	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog/log"
)

func staticBias(bias shared.Bias, err error) BiasSource {
	return func(ctx context.Context, ticker string) (shared.Bias, error) {
		return bias, err
	}
}

func staticRank(rank float64, err error) RankSource {
	return func(ctx context.Context, ticker string) (float64, error) {
		return rank, err
	}
}

func TestAggregatorConfigValidate(t *testing.T) {
	cfg := &AggregatorConfig{Timeout: -1}
	err := cfg.Validate()
	assert.Error(t, err)

	_, err = NewAggregator(cfg)
	assert.Error(t, err)
}

func TestAggregatorSnapshot(t *testing.T) {
	cfg := &AggregatorConfig{
		Flow:     staticBias(shared.Bullish, nil),
		Congress: staticBias(shared.Bearish, errors.New("congress unavailable")),
		DarkPool: staticBias(shared.Bullish, nil),
		IVRank:   staticRank(85, nil),
		Logger:   &log.Logger,
	}

	agg, err := NewAggregator(cfg)
	assert.NoError(t, err)

	// Ensure a failed source resolves to neutral without failing the snapshot.
	snapshot := agg.Snapshot(context.Background(), "AAPL")
	assert.Equal(t, snapshot.Flow, shared.Bullish)
	assert.Equal(t, snapshot.Congress, shared.Neutral)
	assert.Equal(t, snapshot.DarkPool, shared.Bullish)
	assert.Equal(t, snapshot.IVRank, float64(85))

	ok, _ := snapshot.ConfirmsLong()
	assert.True(t, ok)

	// Ensure a failed iv rank resolves to zero and out of range ranks are clamped.
	cfg.IVRank = staticRank(0, errors.New("iv rank unavailable"))
	snapshot = agg.Snapshot(context.Background(), "AAPL")
	assert.Equal(t, snapshot.IVRank, float64(0))

	cfg.IVRank = staticRank(140, nil)
	snapshot = agg.Snapshot(context.Background(), "AAPL")
	assert.Equal(t, snapshot.IVRank, float64(100))

	assert.Equal(t, agg.Flow(context.Background(), "AAPL"), shared.Bullish)
}

func TestAggregatorSourceTimeout(t *testing.T) {
	slow := func(ctx context.Context, ticker string) (shared.Bias, error) {
		select {
		case <-ctx.Done():
			return shared.Bullish, ctx.Err()
		case <-time.After(time.Second * 5):
			return shared.Bullish, nil
		}
	}

	cfg := &AggregatorConfig{
		Flow:     slow,
		Congress: slow,
		DarkPool: slow,
		IVRank:   staticRank(90, nil),
		Timeout:  time.Millisecond * 20,
		Logger:   &log.Logger,
	}

	agg, err := NewAggregator(cfg)
	assert.NoError(t, err)

	// Ensure slow sources are cut off by their timeout and resolve to neutral.
	start := time.Now()
	snapshot := agg.Snapshot(context.Background(), "MSFT")
	assert.LessThan(t, time.Since(start), time.Second*2)
	assert.Equal(t, snapshot.Flow, shared.Neutral)
	assert.Equal(t, snapshot.Congress, shared.Neutral)
	assert.Equal(t, snapshot.DarkPool, shared.Neutral)
	assert.Equal(t, snapshot.IVRank, float64(90))
}
