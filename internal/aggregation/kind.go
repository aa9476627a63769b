// Package aggregation defines the closed set of aggregation kinds a report column can
// use, together with the static facts the engine needs about each one.
package aggregation

import (
	"fmt"
	"strings"
)

// Kind selects how a field's samples are folded into its cells.
type Kind int

const (
	SumOrAverage Kind = iota
	Maximum
	Minimum
	ValueAtMinMax
	HoursZero
	HoursNonzero
	HoursPositive
	HoursNonpositive
	HoursNegative
	HoursNonnegative
	SumOrAverageWhileShown
	MaximumWhileShown
	MinimumWhileShown
	NoAggregation
	TenBinsPercent
	TenBinsMinToMax
	TenBinsZeroToMax
	TenBinsMinToZero
	TenBinsPlusMinusTwoStdDev
	TenBinsPlusMinusThreeStdDev

	numKinds
)

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, numKinds)
	for k := SumOrAverage; k < numKinds; k++ {
		out = append(out, k)
	}
	return out
}

// Valid reports whether k is a member of the closed kind set.
func (k Kind) Valid() bool {
	return k >= SumOrAverage && k < numKinds
}

func (k Kind) String() string {
	switch k {
	case SumOrAverage:
		return "SumOrAverage"
	case Maximum:
		return "Maximum"
	case Minimum:
		return "Minimum"
	case ValueAtMinMax:
		return "ValueAtMinMax"
	case HoursZero:
		return "HoursZero"
	case HoursNonzero:
		return "HoursNonzero"
	case HoursPositive:
		return "HoursPositive"
	case HoursNonpositive:
		return "HoursNonpositive"
	case HoursNegative:
		return "HoursNegative"
	case HoursNonnegative:
		return "HoursNonnegative"
	case SumOrAverageWhileShown:
		return "SumOrAverageWhileShown"
	case MaximumWhileShown:
		return "MaximumWhileShown"
	case MinimumWhileShown:
		return "MinimumWhileShown"
	case NoAggregation:
		return "NoAggregation"
	case TenBinsPercent:
		return "TenBinsPercent"
	case TenBinsMinToMax:
		return "TenBinsMinToMax"
	case TenBinsZeroToMax:
		return "TenBinsZeroToMax"
	case TenBinsMinToZero:
		return "TenBinsMinToZero"
	case TenBinsPlusMinusTwoStdDev:
		return "TenBinsPlusMinusTwoStdDev"
	case TenBinsPlusMinusThreeStdDev:
		return "TenBinsPlusMinusThreeStdDev"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ColumnCount is the number of report columns a field of kind k occupies.
// Extreme-tracking kinds need a value and a timestamp column; binning kinds
// reserve one column per bucket plus their out-of-range buckets.
func ColumnCount(k Kind) int {
	switch k {
	case SumOrAverage, ValueAtMinMax,
		HoursZero, HoursNonzero, HoursPositive, HoursNonpositive, HoursNegative, HoursNonnegative,
		SumOrAverageWhileShown, NoAggregation:
		return 1
	case Maximum, Minimum, MaximumWhileShown, MinimumWhileShown:
		return 2
	case TenBinsMinToMax:
		return 10
	case TenBinsZeroToMax, TenBinsMinToZero:
		return 11
	case TenBinsPercent, TenBinsPlusMinusTwoStdDev, TenBinsPlusMinusThreeStdDev:
		return 12
	}
	panic(fmt.Sprintf("aggregation: no column count for %v", k))
}

// Label is the suffix shown in a column heading. SumOrAverage has none.
func Label(k Kind) string {
	switch k {
	case SumOrAverage:
		return ""
	case Maximum:
		return "MAXIMUM"
	case Minimum:
		return "MINIMUM"
	case ValueAtMinMax:
		return "AT MAX/MIN"
	case HoursZero:
		return "HOURS ZERO"
	case HoursNonzero:
		return "HOURS NON-ZERO"
	case HoursPositive:
		return "HOURS POSITIVE"
	case HoursNonpositive:
		return "HOURS NON-POSITIVE"
	case HoursNegative:
		return "HOURS NEGATIVE"
	case HoursNonnegative:
		return "HOURS NON-NEGATIVE"
	case SumOrAverageWhileShown:
		return "FOR HOURS SHOWN"
	case MaximumWhileShown:
		return "MAX FOR HOURS SHOWN"
	case MinimumWhileShown:
		return "MIN FOR HOURS SHOWN"
	case NoAggregation:
		return "NO AGGREGATION"
	case TenBinsPercent:
		return "HOURS IN TEN PERCENT BINS"
	case TenBinsMinToMax:
		return "HOURS IN TEN BINS MIN TO MAX"
	case TenBinsZeroToMax:
		return "HOURS IN TEN BINS ZERO TO MAX"
	case TenBinsMinToZero:
		return "HOURS IN TEN BINS MIN TO ZERO"
	case TenBinsPlusMinusTwoStdDev:
		return "HOURS IN TEN BINS PLUS OR MINUS TWO STD DEV"
	case TenBinsPlusMinusThreeStdDev:
		return "HOURS IN TEN BINS PLUS OR MINUS THREE STD DEV"
	}
	panic(fmt.Sprintf("aggregation: no label for %v", k))
}

// IsHours reports whether k counts hours under a sign condition.
func (k Kind) IsHours() bool {
	switch k {
	case HoursZero, HoursNonzero, HoursPositive, HoursNonpositive, HoursNegative, HoursNonnegative:
		return true
	}
	return false
}

// IsExtreme reports whether k tracks its own running maximum or minimum.
func (k Kind) IsExtreme() bool {
	return k == Maximum || k == Minimum
}

// TracksExtreme covers every kind rendered as a value/timestamp pair.
func (k Kind) TracksExtreme() bool {
	switch k {
	case Maximum, Minimum, MaximumWhileShown, MinimumWhileShown:
		return true
	}
	return false
}

// IsBinned reports whether k is one of the ten-bin histogram kinds.
func (k Kind) IsBinned() bool {
	switch k {
	case TenBinsPercent, TenBinsMinToMax, TenBinsZeroToMax, TenBinsMinToZero,
		TenBinsPlusMinusTwoStdDev, TenBinsPlusMinusThreeStdDev:
		return true
	}
	return false
}

// HoursCondition evaluates the sign predicate of an hours kind.
func (k Kind) HoursCondition(v float64) bool {
	switch k {
	case HoursZero:
		return v == 0
	case HoursNonzero:
		return v != 0
	case HoursPositive:
		return v > 0
	case HoursNonpositive:
		return v <= 0
	case HoursNegative:
		return v < 0
	case HoursNonnegative:
		return v >= 0
	}
	panic(fmt.Sprintf("aggregation: %v has no hours condition", k))
}

// Improves reports whether candidate strictly beats current for an
// extreme-tracking kind. Ties never improve, so the earliest extreme wins.
func (k Kind) Improves(candidate, current float64) bool {
	switch k {
	case Maximum, MaximumWhileShown:
		return candidate > current
	case Minimum, MinimumWhileShown:
		return candidate < current
	}
	panic(fmt.Sprintf("aggregation: %v does not track an extreme", k))
}

// configNames maps the configuration spelling of each kind, upper-cased.
var configNames = map[string]Kind{
	"SUMORAVERAGE":                       SumOrAverage,
	"MAXIMUM":                            Maximum,
	"MINIMUM":                            Minimum,
	"VALUEWHENMAXIMUMORMINIMUM":          ValueAtMinMax,
	"HOURSZERO":                          HoursZero,
	"HOURSNONZERO":                       HoursNonzero,
	"HOURSPOSITIVE":                      HoursPositive,
	"HOURSNONPOSITIVE":                   HoursNonpositive,
	"HOURSNEGATIVE":                      HoursNegative,
	"HOURSNONNEGATIVE":                   HoursNonnegative,
	"HOURSINTENPERCENTBINS":              TenBinsPercent,
	"HOURINTENBINSMINTOMAX":              TenBinsMinToMax,
	"HOURINTENBINSZEROTOMAX":             TenBinsZeroToMax,
	"HOURINTENBINSMINTOZERO":             TenBinsMinToZero,
	"HOURSINTENBINSPLUSMINUSTWOSTDDEV":   TenBinsPlusMinusTwoStdDev,
	"HOURSINTENBINSPLUSMINUSTHREESTDDEV": TenBinsPlusMinusThreeStdDev,
	"NOAGGREGATION":                      NoAggregation,
	"SUMORAVERAGEDURINGHOURSSHOWN":       SumOrAverageWhileShown,
	"MAXIMUMDURINGHOURSSHOWN":            MaximumWhileShown,
	"MINIMUMDURINGHOURSSHOWN":            MinimumWhileShown,
}

func init() {
	// Go-style names are accepted too, without overriding the configuration spellings.
	for _, k := range Kinds() {
		name := strings.ToUpper(k.String())
		if _, exists := configNames[name]; !exists {
			configNames[name] = k
		}
	}
}

// Parse converts a configuration name into a Kind, ignoring case and surrounding
// whitespace. An unrecognized name yields SumOrAverage and an error wrapping
// ErrUnknownKind; callers treat that as a warning and keep going.
func Parse(name string) (Kind, error) {
	if k, ok := configNames[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return k, nil
	}
	return SumOrAverage, fmt.Errorf("%w: %q, defaulting to %v", ErrUnknownKind, name, SumOrAverage)
}
