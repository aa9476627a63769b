package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStyle(t *testing.T) {
	tests := []struct {
		input   string
		want    Style
		wantErr bool
	}{
		{input: "", want: StyleNone},
		{input: "kwh", want: StyleJtoKWH},
		{input: "JtoMJ", want: StyleJtoMJ},
		{input: "GJ", want: StyleJtoGJ},
		{input: "BTU", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStyle(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownStyle)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForEnergy(t *testing.T) {
	c := For(StyleJtoKWH, "J")
	assert.Equal(t, "kWh", c.Units)
	assert.InDelta(t, 1.0, c.Apply(3600000), 1e-12)

	c = For(StyleJtoGJ, "W")
	assert.Equal(t, "W", c.Units)
	assert.InDelta(t, 42, c.Apply(42), 1e-12)
}

func TestRate(t *testing.T) {
	tests := []struct {
		name      string
		style     Style
		native    string
		wantUnits string
		joules    float64
		want      float64
	}{
		{name: "joules to watts", style: StyleNone, native: "J", wantUnits: "W", joules: 500, want: 500},
		{name: "kwh to watts", style: StyleJtoKWH, native: "J", wantUnits: "W", joules: 500, want: 500},
		{name: "mj to kw", style: StyleJtoMJ, native: "J", wantUnits: "kW", joules: 5000, want: 5},
		{name: "gj to kw", style: StyleJtoGJ, native: "J", wantUnits: "kW", joules: 5000, want: 5},
		{name: "unknown passes through", style: StyleNone, native: "m3", wantUnits: "m3/s", joules: 2, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := For(tt.style, tt.native).Rate()
			assert.Equal(t, tt.wantUnits, c.Units)
			assert.InDelta(t, tt.want, c.Apply(tt.joules), 1e-9)
		})
	}
}

func TestFixPerSecondImperial(t *testing.T) {
	c := Identity("therm").Rate()
	assert.Equal(t, "kBtu/h", c.Units)
	assert.InDelta(t, 360000.0, c.Factor, 1e-9)

	c = Identity("ton-hrs").Rate()
	assert.Equal(t, "ton", c.Units)
}
