package report

import (
	"math"
	"strconv"
	"strings"

	"github.com/sanspareilsmyn/annualtables/internal/aggregation"
)

const (
	dash      = "-"
	maxDigits = 9
)

// formatReal renders v with a fixed number of decimals, clamped to [0, 9].
// Negative zero is shown without its sign.
func formatReal(v float64, digits int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return dash
	}
	if digits < 0 {
		digits = 0
	} else if digits > maxDigits {
		digits = maxDigits
	}
	s := strconv.FormatFloat(v, 'f', digits, 64)
	if strings.HasPrefix(s, "-") && strings.Trim(s, "-0.") == "" {
		s = s[1:]
	}
	return s
}

// heading builds "<header> {<LABEL>} [<units>]".
func heading(f *Field, units string) string {
	var b strings.Builder
	b.WriteString(f.Header)
	if label := aggregation.Label(f.Kind); label != "" {
		b.WriteString(" {")
		b.WriteString(label)
		b.WriteString("}")
	}
	b.WriteString(" [")
	b.WriteString(units)
	b.WriteString("]")
	return b.String()
}
