package shared

// Trend represents the daily market trend.
type Trend int

const (
	FlatTrend Trend = iota
	UpTrend
	DownTrend
)

// String stringifies the provided trend.
func (t Trend) String() string {
	switch t {
	case FlatTrend:
		return "flat"
	case UpTrend:
		return "up"
	case DownTrend:
		return "down"
	default:
		return "unknown trend"
	}
}
