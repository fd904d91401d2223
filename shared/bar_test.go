package shared

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/peterldowns/testy/assert"
)

func TestParseBias(t *testing.T) {
	assert.Equal(t, ParseBias("bullish"), Bullish)
	assert.Equal(t, ParseBias(" BEARISH "), Bearish)
	assert.Equal(t, ParseBias("neutral"), Neutral)
	assert.Equal(t, ParseBias(""), Neutral)
	assert.Equal(t, Bias(999).String(), "unknown")
}

func TestBarBias(t *testing.T) {
	up := Bar{Open: 5, Close: 8}
	down := Bar{Open: 8, Close: 5}
	flat := Bar{Open: 5, Close: 5}

	assert.Equal(t, up.FetchBias(), Bullish)
	assert.Equal(t, down.FetchBias(), Bearish)
	assert.Equal(t, flat.FetchBias(), Neutral)
}

func TestCloses(t *testing.T) {
	bars := []Bar{{Close: 1}, {Close: 2}, {Close: 3}}
	want := []float64{1, 2, 3}
	if !cmp.Equal(Closes(bars), want) {
		t.Errorf("unexpected closes: %s", cmp.Diff(want, Closes(bars)))
	}
}
