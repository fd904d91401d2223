package indicator

import (
	"time"

	"github.com/dnldd/orbflow/shared"
)

// rvolStep is a time of day bucket of the dynamic relative volume floor.
type rvolStep struct {
	until shared.ClockTime
	floor float64
}

// rvolFloors is the stepped floor table. Relative volume compares today's cumulative volume
// against full sessions so early readings are naturally low; the floor ramps up with the
// session.
var rvolFloors = []rvolStep{
	{until: shared.MustParseClockTime("10:00"), floor: 0.3},
	{until: shared.MustParseClockTime("10:30"), floor: 0.5},
	{until: shared.MustParseClockTime("11:30"), floor: 0.7},
	{until: shared.MustParseClockTime("13:00"), floor: 0.9},
	{until: shared.MustParseClockTime("14:30"), floor: 1.1},
	{until: shared.MustParseClockTime("15:30"), floor: 1.3},
}

// lateRVOLFloor applies from the last bucket to the close.
const lateRVOLFloor = 1.5

// RVOLFloor returns the minimum acceptable relative volume at the provided exchange time.
func RVOLFloor(now time.Time) float64 {
	clock := shared.ClockOf(now)
	for idx := range rvolFloors {
		if clock.Before(rvolFloors[idx].until) {
			return rvolFloors[idx].floor
		}
	}

	return lateRVOLFloor
}
