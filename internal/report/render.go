package report

import (
	"fmt"
	"math"

	"github.com/sanspareilsmyn/annualtables/internal/aggregation"
	"github.com/sanspareilsmyn/annualtables/internal/units"
)

// Summary row labels, in the order they follow the entity rows.
const (
	RowSumOrAverage = "Annual Sum or Average"
	RowMinimum      = "Minimum of Rows"
	RowMaximum      = "Maximum of Rows"
)

// Grid is a rendered table: formatted strings only.
type Grid struct {
	Name     string
	For      string
	Subtitle string

	ColumnHeads []string
	RowHeads    []string
	// Body is indexed [row][column].
	Body [][]string
}

// Rows returns the number of body rows, summary rows included.
func (g Grid) Rows() int { return len(g.RowHeads) }

// Columns returns the number of body columns.
func (g Grid) Columns() int { return len(g.ColumnHeads) }

// Cell returns the formatted value at (row, col).
func (g Grid) Cell(row, col int) string { return g.Body[row][col] }

// EntityRows is the number of rows holding entities; the summary rows follow.
func (g Grid) EntityRows() int { return len(g.RowHeads) - summaryRows }

const summaryRows = 4

// summary collects the bottom-of-column statistics over bound rows.
type summary struct {
	sum      float64
	duration float64
	min      float64
	max      float64
	n        int
}

func (s *summary) observe(v float64) {
	if s.n == 0 || v < s.min {
		s.min = v
	}
	if s.n == 0 || v > s.max {
		s.max = v
	}
	s.n++
}

// Render builds the grid for this table. It only reads state, so repeated calls
// without an intervening Accumulate return identical grids.
func (t *Table) Render(style units.Style) Grid {
	columns := 0
	for _, f := range t.fields {
		columns += aggregation.ColumnCount(f.Kind)
	}

	n := len(t.entities)
	g := Grid{
		Name:        t.name,
		For:         reportFor,
		Subtitle:    reportSubtitle,
		ColumnHeads: make([]string, columns),
		RowHeads:    make([]string, n+summaryRows),
		Body:        make([][]string, n+summaryRows),
	}
	copy(g.RowHeads, t.entities)
	g.RowHeads[n+1] = RowSumOrAverage
	g.RowHeads[n+2] = RowMinimum
	g.RowHeads[n+3] = RowMaximum
	for r := range g.Body {
		g.Body[r] = make([]string, columns)
	}

	col := 0
	for _, f := range t.fields {
		conv := units.For(style, f.meta.Units)
		switch f.Kind {
		case aggregation.SumOrAverage, aggregation.SumOrAverageWhileShown:
			t.renderSum(&g, f, col, conv)
		case aggregation.HoursZero, aggregation.HoursNonzero, aggregation.HoursPositive,
			aggregation.HoursNonpositive, aggregation.HoursNegative, aggregation.HoursNonnegative:
			t.renderHours(&g, f, col)
		case aggregation.ValueAtMinMax:
			t.renderValueAt(&g, f, col, conv)
		case aggregation.Maximum, aggregation.Minimum,
			aggregation.MaximumWhileShown, aggregation.MinimumWhileShown:
			t.renderExtreme(&g, f, col, conv)
		case aggregation.NoAggregation:
			g.ColumnHeads[col] = heading(f, conv.Units)
		case aggregation.TenBinsPercent, aggregation.TenBinsMinToMax, aggregation.TenBinsZeroToMax,
			aggregation.TenBinsMinToZero, aggregation.TenBinsPlusMinusTwoStdDev, aggregation.TenBinsPlusMinusThreeStdDev:
			// Bucket columns are reserved but stay empty.
		default:
			panic(fmt.Sprintf("report: no render rule for %v", f.Kind))
		}
		col += aggregation.ColumnCount(f.Kind)
	}
	return g
}

func (t *Table) renderSum(g *Grid, f *Field, col int, conv units.Conversion) {
	g.ColumnHeads[col] = heading(f, conv.Units)

	var s summary
	for row := range t.entities {
		c := f.cells[row]
		switch {
		case !c.bound:
			g.Body[row][col] = dash
		case f.meta.Accumulated:
			v := conv.Apply(c.Accumulated)
			s.sum += c.Accumulated
			s.observe(v)
			g.Body[row][col] = formatReal(v, f.Digits)
		case c.Duration == 0:
			// A time-weighted cell that never saw a step has no average.
			g.Body[row][col] = ""
		default:
			v := conv.Apply(c.Accumulated / c.Duration)
			s.sum += c.Accumulated
			s.duration += c.Duration
			s.observe(v)
			g.Body[row][col] = formatReal(v, f.Digits)
		}
	}

	n := len(t.entities)
	switch {
	case s.n == 0:
		g.Body[n+1][col] = dash
	case f.meta.Accumulated:
		g.Body[n+1][col] = formatReal(conv.Apply(s.sum), f.Digits)
	case s.duration > 0:
		g.Body[n+1][col] = formatReal(conv.Apply(s.sum/s.duration), f.Digits)
	default:
		g.Body[n+1][col] = ""
	}
	t.writeMinMax(g, f, col, s)
}

func (t *Table) renderHours(g *Grid, f *Field, col int) {
	g.ColumnHeads[col] = heading(f, "HOURS")

	var s summary
	for row := range t.entities {
		c := f.cells[row]
		if !c.bound {
			g.Body[row][col] = dash
			continue
		}
		s.sum += c.Accumulated
		s.observe(c.Accumulated)
		g.Body[row][col] = formatReal(c.Accumulated, f.Digits)
	}

	n := len(t.entities)
	if s.n == 0 {
		g.Body[n+1][col] = dash
	} else {
		g.Body[n+1][col] = formatReal(s.sum, f.Digits)
	}
	t.writeMinMax(g, f, col, s)
}

func (t *Table) renderValueAt(g *Grid, f *Field, col int, conv units.Conversion) {
	if f.meta.Accumulated {
		conv = conv.Rate()
	}
	g.ColumnHeads[col] = heading(f, conv.Units)

	var s summary
	for row := range t.entities {
		c := f.cells[row]
		if !c.bound || !c.captured {
			g.Body[row][col] = dash
			continue
		}
		v := conv.Apply(c.Accumulated)
		s.observe(v)
		g.Body[row][col] = formatReal(v, f.Digits)
	}
	g.Body[len(t.entities)+1][col] = dash
	t.writeMinMax(g, f, col, s)
}

func (t *Table) renderExtreme(g *Grid, f *Field, col int, conv units.Conversion) {
	if f.meta.Accumulated {
		conv = conv.Rate()
	}
	g.ColumnHeads[col] = heading(f, conv.Units)
	g.ColumnHeads[col+1] = f.Header + " {TIMESTAMP}"

	var s summary
	for row := range t.entities {
		c := f.cells[row]
		if !c.bound || math.Abs(c.Accumulated) >= displayLimit {
			g.Body[row][col] = dash
			g.Body[row][col+1] = dash
			continue
		}
		v := conv.Apply(c.Accumulated)
		if math.Abs(v) >= displayLimit {
			g.Body[row][col] = dash
		} else {
			s.observe(v)
			g.Body[row][col] = formatReal(v, f.Digits)
		}
		g.Body[row][col+1] = c.Timestamp.String()
	}

	n := len(t.entities)
	g.Body[n+1][col] = dash
	g.Body[n+1][col+1] = dash
	g.Body[n+2][col+1] = dash
	g.Body[n+3][col+1] = dash
	t.writeMinMax(g, f, col, s)
}

// writeMinMax fills the minimum and maximum summary rows of col.
func (t *Table) writeMinMax(g *Grid, f *Field, col int, s summary) {
	n := len(t.entities)
	if s.n == 0 {
		g.Body[n+2][col] = dash
		g.Body[n+3][col] = dash
		return
	}
	g.Body[n+2][col] = formatReal(s.min, f.Digits)
	g.Body[n+3][col] = formatReal(s.max, f.Digits)
}
