package sentiment

import (
	"testing"

	"github.com/dnldd/orbflow/shared"
	"github.com/google/go-cmp/cmp"
	"github.com/peterldowns/testy/assert"
)

func TestSnapshotConfirmsLong(t *testing.T) {
	tests := []struct {
		name     string
		snapshot Snapshot
		want     bool
		reasons  []shared.Reason
	}{
		{
			name:     "bullish flow with congress",
			snapshot: Snapshot{Flow: shared.Bullish, Congress: shared.Bullish},
			want:     true,
			reasons:  []shared.Reason{shared.BullishFlow, shared.BullishCongress},
		},
		{
			name:     "bullish flow with dark pool",
			snapshot: Snapshot{Flow: shared.Bullish, DarkPool: shared.Bullish},
			want:     true,
			reasons:  []shared.Reason{shared.BullishFlow, shared.BullishDarkPool},
		},
		{
			name:     "all bullish",
			snapshot: Snapshot{Flow: shared.Bullish, Congress: shared.Bullish, DarkPool: shared.Bullish},
			want:     true,
			reasons:  []shared.Reason{shared.BullishFlow, shared.BullishCongress, shared.BullishDarkPool},
		},
		{
			name:     "bullish flow alone",
			snapshot: Snapshot{Flow: shared.Bullish, Congress: shared.Bearish},
			want:     false,
		},
		{
			name:     "neutral flow",
			snapshot: Snapshot{Congress: shared.Bullish, DarkPool: shared.Bullish},
			want:     false,
		},
	}

	for _, test := range tests {
		ok, reasons := test.snapshot.ConfirmsLong()
		if ok != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, ok)
		}
		if !cmp.Equal(reasons, test.reasons) {
			t.Errorf("%s: unexpected reasons %s", test.name, cmp.Diff(test.reasons, reasons))
		}
	}
}

func TestSnapshotConfirmsShort(t *testing.T) {
	snapshot := Snapshot{Flow: shared.Bearish}
	ok, reasons := snapshot.ConfirmsShort()
	assert.True(t, ok)
	assert.Equal(t, reasons, []shared.Reason{shared.BearishFlow})

	ok, _ = snapshot.Confirms(shared.Short)
	assert.True(t, ok)
	ok, _ = snapshot.Confirms(shared.Long)
	assert.False(t, ok)

	snapshot = Snapshot{Flow: shared.Bullish, Congress: shared.Bearish, DarkPool: shared.Bearish}
	ok, reasons = snapshot.ConfirmsShort()
	assert.False(t, ok)
	assert.Equal(t, len(reasons), 0)
}

func TestSnapshotGates(t *testing.T) {
	snapshot := Snapshot{Flow: shared.Bearish, IVRank: 70}

	// Ensure the iv rank minimum is inclusive.
	assert.True(t, snapshot.PassesIVRank(70))
	assert.False(t, snapshot.PassesIVRank(70.5))
}
