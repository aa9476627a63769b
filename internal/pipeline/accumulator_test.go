package pipeline

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sanspareilsmyn/annualtables/internal/aggregation"
	"github.com/sanspareilsmyn/annualtables/internal/message"
	"github.com/sanspareilsmyn/annualtables/internal/report"
	"github.com/sanspareilsmyn/annualtables/internal/source"
	"github.com/sanspareilsmyn/annualtables/internal/units"
)

func newTestAccumulator(t *testing.T, logger *zap.Logger) (*Accumulator, chan message.Frame, chan Report) {
	t.Helper()
	store := source.NewStore()
	require.NoError(t, store.Declare("Load", source.Metadata{Units: "W"}))
	_, err := store.AddKey("Load", "A")
	require.NoError(t, err)

	reg := report.NewRegistry(logger)
	tbl := report.NewTable("Loads", logger)
	require.NoError(t, tbl.AddField("Load", aggregation.Maximum, 1))
	require.NoError(t, tbl.AddField("Load", aggregation.HoursPositive, 1))
	reg.Add(tbl)
	require.NoError(t, reg.Bind(store))

	in := make(chan message.Frame, 10)
	out := make(chan Report, 1)
	return NewAccumulator(store, reg, units.StyleNone, in, out, logger), in, out
}

func timestep(hour int, v any) message.Frame {
	return message.Frame{
		Type:          message.FrameTimestep,
		Month:         3,
		Day:           15,
		Hour:          hour,
		ZoneStepHours: 0.5,
		Values:        map[string]map[string]any{"Load": {"A": v}},
	}
}

func TestAccumulatorRendersOnEndFrame(t *testing.T) {
	acc, in, out := newTestAccumulator(t, zap.NewNop())
	nonNumeric := testutil.ToFloat64(samplesSkipped.WithLabelValues("non_numeric"))

	in <- timestep(1, 5.0)
	in <- timestep(2, -1.0)
	in <- timestep(3, "n/a")
	in <- timestep(4, 7.5)
	in <- message.Frame{Type: message.FrameEnd}

	require.NoError(t, acc.Run(context.Background()))
	require.Len(t, out, 1)
	r := <-out

	assert.Equal(t, int64(4), r.Timesteps)
	assert.Equal(t, units.StyleNone, r.Style)
	require.Len(t, r.Grids, 1)
	g := r.Grids[0]
	assert.Equal(t, "7.5", g.Cell(0, 0))
	assert.Equal(t, "15-MAR-03:00", g.Cell(0, 1))
	// "n/a" leaves the previous value (-1) in place for hour 3.
	assert.Equal(t, "1.0", g.Cell(0, 2))
	assert.Equal(t, []report.TOCEntry{{Label: "Loads", For: "Entire Facility", Anchor: "LoadsEntireFacility"}}, r.TOC)
	assert.Equal(t, 1.0, testutil.ToFloat64(samplesSkipped.WithLabelValues("non_numeric"))-nonNumeric)
	assert.Equal(t, 2.0, testutil.ToFloat64(engineUpdates.WithLabelValues("hours")))
}

func TestAccumulatorCarriesOmittedValuesForward(t *testing.T) {
	acc, in, out := newTestAccumulator(t, zap.NewNop())

	in <- timestep(1, 3.0)
	omitted := timestep(2, nil)
	omitted.Values = nil
	in <- omitted
	in <- message.Frame{Type: message.FrameEnd}

	require.NoError(t, acc.Run(context.Background()))
	r := <-out
	g := r.Grids[0]
	assert.Equal(t, "3.0", g.Cell(0, 0))
	// Both half-hour steps sample the last reported value.
	assert.Equal(t, "1.0", g.Cell(0, 2))
}

func TestAccumulatorRendersWhenInputCloses(t *testing.T) {
	acc, in, out := newTestAccumulator(t, zap.NewNop())
	in <- timestep(1, 2.0)
	close(in)

	require.NoError(t, acc.Run(context.Background()))
	require.Len(t, out, 1)
}

func TestAccumulatorWithoutTimestepsSkipsReport(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	acc, in, out := newTestAccumulator(t, zap.New(core))
	in <- message.Frame{Type: message.FrameEnd}

	require.NoError(t, acc.Run(context.Background()))
	assert.Empty(t, out)
	assert.Equal(t, 1, logs.FilterMessage("No timestep data received, skipping report generation").Len())
}

func TestAccumulatorCancelledRunProducesNoReport(t *testing.T) {
	acc, in, out := newTestAccumulator(t, zap.NewNop())
	in <- timestep(1, 2.0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := acc.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out)
}

func TestAccumulatorInputClosedAfterAbortProducesNoReport(t *testing.T) {
	acc, in, out := newTestAccumulator(t, zap.NewNop())
	in <- timestep(1, 2.0)
	close(in)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := acc.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out)
}

func TestAccumulatorWarnsOnceForUnknownKeys(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	acc, in, _ := newTestAccumulator(t, zap.New(core))

	for h := 1; h <= 3; h++ {
		f := timestep(h, 1.0)
		f.Values["Load"]["B"] = 4.0
		in <- f
	}
	close(in)

	require.NoError(t, acc.Run(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("Value for undeclared variable or key ignored").Len())
	assert.Equal(t, int64(3), acc.Timesteps())
}
