package report

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanspareilsmyn/annualtables/internal/aggregation"
	"github.com/sanspareilsmyn/annualtables/internal/clock"
	"github.com/sanspareilsmyn/annualtables/internal/units"
)

func TestRenderLayoutAndUnits(t *testing.T) {
	fx := newFixture(t)
	fx.variable("Energy", "J", true, "K1")
	fx.variable("Power", "W", false, "K1")

	tbl := NewTable("Plant", nil)
	require.NoError(t, tbl.AddFieldWithHeader("Energy", "Energy", aggregation.SumOrAverage, 2))
	require.NoError(t, tbl.AddFieldWithHeader("Energy", "Energy", aggregation.Maximum, 2))
	require.NoError(t, tbl.AddFieldWithHeader("Power", "Power", aggregation.HoursPositive, 2))
	require.NoError(t, tbl.AddFieldWithHeader("Power", "Power", aggregation.ValueAtMinMax, 2))
	require.NoError(t, tbl.AddFieldWithHeader("Power", "Power", aggregation.TenBinsMinToMax, 2))
	require.NoError(t, tbl.AddFieldWithHeader("Power", "Power", aggregation.NoAggregation, 2))
	require.NoError(t, tbl.Bind(fx.store))

	steps := []struct{ e, p float64 }{{3.6e6, 5}, {7.2e6, -1}}
	for i, s := range steps {
		fx.set("Energy", "K1", s.e)
		fx.set("Power", "K1", s.p)
		tbl.Accumulate(fx.at(1, i+1), fx.store)
	}

	g := tbl.Render(units.StyleJtoKWH)
	assert.Equal(t, "Plant", g.Name)
	assert.Equal(t, "Entire Facility", g.For)
	assert.Equal(t, "Custom Annual Report", g.Subtitle)
	require.Equal(t, 16, g.Columns())
	require.Equal(t, 5, g.Rows())
	assert.Equal(t, 1, g.EntityRows())

	assert.Equal(t, "Energy [kWh]", g.ColumnHeads[0])
	assert.Equal(t, "Energy {MAXIMUM} [W]", g.ColumnHeads[1])
	assert.Equal(t, "Energy {TIMESTAMP}", g.ColumnHeads[2])
	assert.Equal(t, "Power {HOURS POSITIVE} [HOURS]", g.ColumnHeads[3])
	assert.Equal(t, "Power {AT MAX/MIN} [W]", g.ColumnHeads[4])
	for col := 5; col < 15; col++ {
		assert.Empty(t, g.ColumnHeads[col])
	}
	assert.Equal(t, "Power {NO AGGREGATION} [W]", g.ColumnHeads[15])

	assert.Equal(t, []string{"K1", "", RowSumOrAverage, RowMinimum, RowMaximum}, g.RowHeads)

	row := g.Body[0]
	assert.Equal(t, "3.00", row[0])
	assert.Equal(t, "2000.00", row[1])
	assert.Equal(t, "01-JAN-01:00", row[2])
	assert.Equal(t, "1.00", row[3])
	assert.Equal(t, "-1.00", row[4])
	for col := 5; col < 16; col++ {
		assert.Empty(t, row[col], "column %d", col)
	}

	sum, lo, hi := g.Body[2], g.Body[3], g.Body[4]
	assert.Equal(t, []string{"3.00", "3.00", "3.00"}, []string{sum[0], lo[0], hi[0]})
	assert.Equal(t, []string{"-", "2000.00", "2000.00"}, []string{sum[1], lo[1], hi[1]})
	assert.Equal(t, []string{"-", "-", "-"}, []string{sum[2], lo[2], hi[2]})
	assert.Equal(t, []string{"1.00", "1.00", "1.00"}, []string{sum[3], lo[3], hi[3]})
	assert.Equal(t, []string{"-", "-1.00", "-1.00"}, []string{sum[4], lo[4], hi[4]})
	for col := range g.Body[1] {
		assert.Empty(t, g.Body[1][col], "separator row stays blank")
	}
}

func TestRenderMaximumAndValueAtScenario(t *testing.T) {
	fx := newFixture(t)
	fx.variable("X", "C", false, "K")
	fx.variable("Y", "C", false, "K")
	tbl := NewTable("Peak", nil)
	require.NoError(t, tbl.AddFieldWithHeader("X", "X", aggregation.Maximum, 1))
	require.NoError(t, tbl.AddFieldWithHeader("Y", "Y", aggregation.ValueAtMinMax, 0))
	require.NoError(t, tbl.Bind(fx.store))

	xs, ys := []float64{3, 7, 5}, []float64{10, 20, 30}
	for i := range xs {
		fx.set("X", "K", xs[i])
		fx.set("Y", "K", ys[i])
		tbl.Accumulate(fx.at(1, i+1), fx.store)
	}

	g := tbl.Render(units.StyleNone)
	assert.Equal(t, []string{"7.0", "01-JAN-01:00", "20"}, g.Body[0])
}

func TestRenderUnboundRowsAreDashedAndExcluded(t *testing.T) {
	fx := newFixture(t)
	fx.variable("A", "W", false, "K1", "K2")
	fx.variable("B", "W", false, "K1", "K3")
	tbl := NewTable("Sparse", nil)
	require.NoError(t, tbl.AddField("A", aggregation.SumOrAverage, 2))
	require.NoError(t, tbl.AddField("B", aggregation.SumOrAverage, 2))
	require.NoError(t, tbl.Bind(fx.store))

	steps := []map[string]map[string]float64{
		{"A": {"K1": 2, "K2": 6}, "B": {"K1": 1, "K3": 10}},
		{"A": {"K1": 4, "K2": 6}, "B": {"K1": 3, "K3": 20}},
	}
	for i, s := range steps {
		for name, keys := range s {
			for key, v := range keys {
				fx.set(name, key, v)
			}
		}
		tbl.Accumulate(fx.at(1, i+1), fx.store)
	}

	g := tbl.Render(units.StyleNone)
	require.Equal(t, []string{"K1", "K2", "K3"}, g.RowHeads[:3])

	column := func(col int) []string {
		out := make([]string, 0, g.Rows())
		for r := 0; r < g.Rows(); r++ {
			out = append(out, g.Cell(r, col))
		}
		return out
	}
	assert.Equal(t, []string{"3.00", "6.00", "-", "", "4.50", "3.00", "6.00"}, column(0))
	assert.Equal(t, []string{"2.00", "-", "15.00", "", "8.50", "2.00", "15.00"}, column(1))
}

func TestRenderAccumulatedSumIsTotal(t *testing.T) {
	fx := newFixture(t)
	fx.variable("E", "J", true, "K1", "K2")
	tbl := NewTable("Totals", nil)
	require.NoError(t, tbl.AddField("E", aggregation.SumOrAverage, 0))
	require.NoError(t, tbl.Bind(fx.store))

	fx.set("E", "K1", 1000)
	fx.set("E", "K2", 3000)
	tbl.Accumulate(fx.at(1, 1), fx.store)
	tbl.Accumulate(fx.at(1, 2), fx.store)

	g := tbl.Render(units.StyleNone)
	assert.Equal(t, "E [J]", g.ColumnHeads[0])
	assert.Equal(t, "2000", g.Cell(0, 0))
	assert.Equal(t, "6000", g.Cell(1, 0))
	assert.Equal(t, "8000", g.Cell(3, 0))
	assert.Equal(t, "2000", g.Cell(4, 0))
	assert.Equal(t, "6000", g.Cell(5, 0))
}

func TestRenderNeverUpdatedCells(t *testing.T) {
	fx := newFixture(t)
	fx.variableAt("S", "W", false, clock.System, "K")
	tbl := NewTable("Idle", nil)
	require.NoError(t, tbl.AddField("S", aggregation.Maximum, 2))
	require.NoError(t, tbl.AddField("S", aggregation.SumOrAverage, 2))
	require.NoError(t, tbl.AddField("S", aggregation.ValueAtMinMax, 2))
	require.NoError(t, tbl.Bind(fx.store))

	tbl.Accumulate(fx.at(1, 1), fx.store)

	g := tbl.Render(units.StyleNone)
	assert.Equal(t, []string{"-", "-", "", "-"}, g.Body[0])
	for _, r := range []int{2, 3, 4} {
		assert.Equal(t, []string{"-", "-", "-", "-"}, g.Body[r], "summary row %d", r)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	fx := newFixture(t)
	fx.variable("X", "C", false, "K1", "K2")
	tbl := NewTable("Twice", nil)
	require.NoError(t, tbl.AddField("X", aggregation.Maximum, 2))
	require.NoError(t, tbl.AddField("X", aggregation.SumOrAverage, 2))
	require.NoError(t, tbl.AddField("X", aggregation.HoursNegative, 2))
	require.NoError(t, tbl.Bind(fx.store))

	for i, v := range []float64{-2, 4, 1} {
		fx.set("X", "K1", v)
		fx.set("X", "K2", -v)
		tbl.Accumulate(fx.at(1, i+1), fx.store)
	}

	first := tbl.Render(units.StyleNone)
	second := tbl.Render(units.StyleNone)
	assert.Equal(t, first, second)
}

func TestRenderZeroEntities(t *testing.T) {
	fx := newFixture(t)
	tbl := NewTable("Empty", nil)
	require.NoError(t, tbl.AddField("Missing", aggregation.SumOrAverage, 2))
	require.NoError(t, tbl.AddField("Missing", aggregation.Maximum, 2))
	require.NoError(t, tbl.AddField("Missing", aggregation.HoursZero, 2))
	require.NoError(t, tbl.Bind(fx.store))
	tbl.Accumulate(fx.at(1, 1), fx.store)

	g := tbl.Render(units.StyleNone)
	assert.Zero(t, g.EntityRows())
	assert.Equal(t, []string{"", RowSumOrAverage, RowMinimum, RowMaximum}, g.RowHeads)
	require.Equal(t, 4, g.Columns())
	for r := 1; r < g.Rows(); r++ {
		for c := 0; c < g.Columns(); c++ {
			assert.Equal(t, "-", g.Cell(r, c), "row %d col %d", r, c)
		}
	}
}

func TestFormatReal(t *testing.T) {
	tests := []struct {
		name   string
		v      float64
		digits int
		want   string
	}{
		{name: "two digits", v: 3.14159, digits: 2, want: "3.14"},
		{name: "zero digits rounds", v: 2.5001, digits: 0, want: "3"},
		{name: "negative digits clamp", v: 12.7, digits: -1, want: "13"},
		{name: "too many digits clamp", v: 1, digits: 15, want: "1.000000000"},
		{name: "negative zero", v: -0.001, digits: 2, want: "0.00"},
		{name: "negative", v: -0.5, digits: 1, want: "-0.5"},
		{name: "nan", v: math.NaN(), digits: 2, want: "-"},
		{name: "inf", v: math.Inf(1), digits: 2, want: "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatReal(tt.v, tt.digits))
		})
	}
}
