// Package units converts native report quantities into their display units.
package units

import (
	"fmt"
	"strings"
)

// Style selects how energy quantities (native unit J) are displayed.
type Style int

const (
	StyleNone Style = iota
	StyleJtoKWH
	StyleJtoMJ
	StyleJtoGJ
)

func (s Style) String() string {
	switch s {
	case StyleNone:
		return "None"
	case StyleJtoKWH:
		return "JtoKWH"
	case StyleJtoMJ:
		return "JtoMJ"
	case StyleJtoGJ:
		return "JtoGJ"
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// ParseStyle accepts the configuration spellings ("None", "JtoKWH", "JtoMJ",
// "JtoGJ") and the bare target units ("J", "kWh", "MJ", "GJ"), ignoring case.
func ParseStyle(s string) (Style, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NONE", "J":
		return StyleNone, nil
	case "JTOKWH", "KWH":
		return StyleJtoKWH, nil
	case "JTOMJ", "MJ":
		return StyleJtoMJ, nil
	case "JTOGJ", "GJ":
		return StyleJtoGJ, nil
	}
	return StyleNone, fmt.Errorf("%w: %q", ErrUnknownStyle, s)
}

// Energy returns the display unit and multiplier for joules under style s.
func (s Style) Energy() (string, float64) {
	switch s {
	case StyleJtoKWH:
		return "kWh", 1.0 / 3600000.0
	case StyleJtoMJ:
		return "MJ", 1.0 / 1000000.0
	case StyleJtoGJ:
		return "GJ", 1.0 / 1000000000.0
	}
	return "J", 1.0
}

// Conversion maps a native value to display units as v*Factor + Offset.
type Conversion struct {
	Units  string
	Factor float64
	Offset float64
}

// Identity leaves values and units untouched.
func Identity(units string) Conversion {
	return Conversion{Units: units, Factor: 1}
}

// For returns the display conversion for a quantity with the given native units.
// Only energy in J is rescaled; everything else passes through.
func For(style Style, native string) Conversion {
	if native == "J" {
		u, f := style.Energy()
		return Conversion{Units: u, Factor: f}
	}
	return Identity(native)
}

// Apply converts a native value.
func (c Conversion) Apply(v float64) float64 {
	return v*c.Factor + c.Offset
}

type perSecondRule struct {
	units string
	scale float64
}

// perSecond rewrites "<energy>/s" into the matching power unit.
var perSecond = map[string]perSecondRule{
	"J/s":       {"W", 1},
	"kWh/s":     {"W", 3600000.0},
	"GJ/s":      {"kW", 1000000.0},
	"MJ/s":      {"kW", 1000.0},
	"therm/s":   {"kBtu/h", 360000.0},
	"kBtu/s":    {"kBtu/h", 3600.0},
	"ton-hrs/s": {"ton", 3600.0},
}

// Rate is the conversion for a per-step sum that was divided by the step length:
// the units gain "/s" and known energy rates are rewritten as power.
func (c Conversion) Rate() Conversion {
	return c.FixPerSecond(c.Units + "/s")
}

// FixPerSecond applies the per-second rewrite table to units, keeping c's factor
// and offset for unknown units.
func (c Conversion) FixPerSecond(units string) Conversion {
	out := c
	out.Units = units
	if rule, ok := perSecond[units]; ok {
		out.Units = rule.units
		out.Factor *= rule.scale
	}
	return out
}
