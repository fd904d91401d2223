package shared

import (
	"strings"
	"time"
)

// Bias represents the directional read of a market or sentiment source.
type Bias int

const (
	Neutral Bias = iota
	Bullish
	Bearish
)

// String stringifies the provided bias.
func (b Bias) String() string {
	switch b {
	case Neutral:
		return "neutral"
	case Bullish:
		return "bullish"
	case Bearish:
		return "bearish"
	default:
		return "unknown"
	}
}

// ParseBias converts a provider sentiment string to a bias. Anything that is not clearly
// bullish or bearish resolves to neutral.
func ParseBias(s string) Bias {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bullish":
		return Bullish
	case "bearish":
		return Bearish
	default:
		return Neutral
	}
}

// Bar represents a unit price bar for a market.
type Bar struct {
	Open   float64
	Low    float64
	High   float64
	Close  float64
	Volume float64
	Date   time.Time
}

// FetchBias returns the provided bar's directional bias.
func (b *Bar) FetchBias() Bias {
	change := b.Close - b.Open
	switch {
	case change < 0:
		return Bearish
	case change > 0:
		return Bullish
	default:
		return Neutral
	}
}

// Closes returns the close prices of the provided bars.
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for idx := range bars {
		closes[idx] = bars[idx].Close
	}

	return closes
}
