package indicator

import (
	"github.com/dnldd/orbflow/shared"
)

// VWAP returns the volume weighted average close of the provided bars.
//
// When the bars carry no volume at all there is nothing to weigh by, the last close is
// returned as the fair value reference instead. An empty series returns zero.
func VWAP(bars []shared.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}

	var priceVolume, volume float64
	for idx := range bars {
		priceVolume += bars[idx].Close * bars[idx].Volume
		volume += bars[idx].Volume
	}

	if volume == 0 {
		return bars[len(bars)-1].Close
	}

	return priceVolume / volume
}
