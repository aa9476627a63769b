package report

import (
	"fmt"

	"github.com/sanspareilsmyn/annualtables/internal/aggregation"
	"github.com/sanspareilsmyn/annualtables/internal/clock"
	"github.com/sanspareilsmyn/annualtables/internal/source"
)

// Accumulate folds one timestep into every bound cell whose field is sampled at
// step.Kind. Fields are visited in declaration order because extreme and hours
// updates write into the fields that follow them.
func (t *Table) Accumulate(step clock.Step, sampler source.Sampler) {
	t.stats.Steps++
	for row := range t.entities {
		for i, f := range t.fields {
			if !f.found || f.meta.Cadence != step.Kind {
				continue
			}
			c := &f.cells[row]
			if !c.bound {
				continue
			}
			t.stats.Samples++
			t.gather(i, row, sampler.Value(c.handle), step, sampler)
		}
	}
}

// gather applies the update rule of field i's kind to its cell in row.
func (t *Table) gather(i, row int, v float64, step clock.Step, sampler source.Sampler) {
	f := t.fields[i]
	c := &f.cells[row]

	switch f.Kind {
	case aggregation.SumOrAverage:
		c.Accumulated += f.weighted(v, step)
		c.Duration += step.Elapsed

	case aggregation.Maximum, aggregation.Minimum:
		v = f.rate(v, step)
		if f.Kind.Improves(v, c.Accumulated) {
			c.Accumulated = v
			c.Timestamp = step.Time
			t.stats.ExtremeUpdates++
			t.scanAfterExtreme(i, row, step, sampler)
		}

	case aggregation.HoursZero, aggregation.HoursNonzero, aggregation.HoursPositive,
		aggregation.HoursNonpositive, aggregation.HoursNegative, aggregation.HoursNonnegative:
		if f.Kind.HoursCondition(v) {
			c.Accumulated += step.Elapsed
			t.stats.HoursUpdates++
			t.scanAfterHours(i, row, step, sampler)
		}

	case aggregation.TenBinsPercent, aggregation.TenBinsMinToMax, aggregation.TenBinsZeroToMax,
		aggregation.TenBinsMinToZero, aggregation.TenBinsPlusMinusTwoStdDev, aggregation.TenBinsPlusMinusThreeStdDev:
		// Bucketing is deferred; the samples are only collected.
		c.Deferred = append(c.Deferred, f.weighted(v, step))
		c.Duration += step.Elapsed

	case aggregation.ValueAtMinMax, aggregation.SumOrAverageWhileShown,
		aggregation.MaximumWhileShown, aggregation.MinimumWhileShown, aggregation.NoAggregation:
		// Written only by the scans below, if at all.

	default:
		panic(fmt.Sprintf("report: no accumulation rule for %v", f.Kind))
	}
}

// scanAfterExtreme freezes the ValueAtMinMax fields following field i, up to the
// next Maximum or Minimum field, at the values current when i's extreme moved.
func (t *Table) scanAfterExtreme(i, row int, step clock.Step, sampler source.Sampler) {
	for _, g := range t.fields[i+1:] {
		if g.Kind.IsExtreme() {
			return
		}
		if g.Kind != aggregation.ValueAtMinMax {
			continue
		}
		c := &g.cells[row]
		if !c.bound {
			continue
		}
		c.Accumulated = g.rate(sampler.Value(c.handle), step)
		c.captured = true
		t.stats.ScanWrites++
	}
}

// scanAfterHours feeds the *WhileShown fields following hours field i while its
// condition holds. The walk stops at the next hours field and handles at most one
// field per call.
func (t *Table) scanAfterHours(i, row int, step clock.Step, sampler source.Sampler) {
	for _, g := range t.fields[i+1:] {
		if g.Kind.IsHours() {
			return
		}
		c := &g.cells[row]
		if !c.bound {
			continue
		}
		switch g.Kind {
		case aggregation.SumOrAverageWhileShown:
			c.Accumulated += g.weighted(sampler.Value(c.handle), step)
			c.Duration += step.Elapsed
		case aggregation.MaximumWhileShown, aggregation.MinimumWhileShown:
			v := g.rate(sampler.Value(c.handle), step)
			if g.Kind.Improves(v, c.Accumulated) {
				c.Accumulated = v
				c.Timestamp = step.Time
			}
		default:
			continue
		}
		t.stats.ScanWrites++
		return
	}
}
