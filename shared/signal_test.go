package shared

import (
	"testing"

	"github.com/peterldowns/testy/assert"
)

func TestActionString(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   string
		verb   string
	}{
		{"enter long", EnterLong, "enter_long", "buy_to_open"},
		{"enter short", EnterShort, "enter_short", "sell_to_open"},
		{"exit long", ExitLong, "exit_long", "sell_to_close"},
		{"exit short", ExitShort, "exit_short", "buy_to_close"},
		{"unknown", Action(999), "unknown", "unknown"},
	}

	for _, test := range tests {
		if test.action.String() != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, test.action.String())
		}
		if test.action.OrderVerb() != test.verb {
			t.Errorf("%s: expected verb %v, got %v", test.name, test.verb, test.action.OrderVerb())
		}
	}
}

func TestNewSignal(t *testing.T) {
	now, _, _ := NewYorkTime()

	// Ensure signals are created with unique ids.
	a := NewSignal("AAPL", EntryAction(Long), "orb breakout", 10, now)
	b := NewSignal("AAPL", ExitAction(Long), "eod flatten", 11, now)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Action, EnterLong)
	assert.Equal(t, b.Action, ExitLong)
	assert.Equal(t, EntryAction(Short), EnterShort)
	assert.Equal(t, ExitAction(Short), ExitShort)
}
