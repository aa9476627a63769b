package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanspareilsmyn/annualtables/internal/aggregation"
	"github.com/sanspareilsmyn/annualtables/internal/units"
)

func TestRegistryLifecycle(t *testing.T) {
	fx := newFixture(t)
	fx.variable("Temp", "C", false, "ZONE 1", "ZONE 2")

	reg := NewRegistry(nil)
	a := NewTable("Temperatures", reg.Logger())
	require.NoError(t, a.AddField("Temp", aggregation.SumOrAverage, 1))
	b := NewTable("Peaks", reg.Logger())
	require.NoError(t, b.AddField("Temp", aggregation.Maximum, 1))
	reg.Add(a)
	reg.Add(b)

	require.NoError(t, reg.Bind(fx.store))
	for i, v := range []float64{20, 22} {
		fx.set("Temp", "ZONE 1", v)
		fx.set("Temp", "ZONE 2", v+1)
		reg.Accumulate(fx.at(1, i+1), fx.store)
	}

	grids := reg.Render(units.StyleNone)
	require.Len(t, grids, 2)
	assert.Equal(t, "Temperatures", grids[0].Name)
	assert.Equal(t, "21.0", grids[0].Cell(0, 0))
	assert.Equal(t, "Peaks", grids[1].Name)
	assert.Equal(t, "23.0", grids[1].Cell(1, 0))

	stats := reg.Stats()
	assert.Equal(t, uint64(4), stats.Steps)
	assert.Equal(t, uint64(8), stats.Samples)
	assert.Equal(t, uint64(4), stats.ExtremeUpdates)
}

func TestRegistryBindCollectsErrors(t *testing.T) {
	fx := newFixture(t)
	reg := NewRegistry(nil)
	tbl := NewTable("Twice", nil)
	require.NoError(t, tbl.AddField("V", aggregation.SumOrAverage, 2))
	reg.Add(tbl)

	require.NoError(t, reg.Bind(fx.store))
	err := reg.Bind(fx.store)
	require.ErrorIs(t, err, ErrAlreadyBound)
	assert.Contains(t, err.Error(), `"Twice"`)
}

func TestTableOfContents(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Add(NewTable("Chiller Report", nil))
	reg.Add(NewTable("Zone-2 Loads", nil))

	toc := reg.TableOfContents()
	require.Len(t, toc, 2)
	assert.Equal(t, TOCEntry{Label: "Chiller Report", For: "Entire Facility", Anchor: "ChillerReportEntireFacility"}, toc[0])
	assert.Equal(t, "Zone2LoadsEntireFacility", toc[1].Anchor)
}
