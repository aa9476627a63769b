// Package report implements the annual row-per-entity tables: fields are declared
// in order, bound once to their value sources, accumulated every timestep and
// rendered once into a grid of formatted strings.
package report

import (
	"math"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sanspareilsmyn/annualtables/internal/aggregation"
	"github.com/sanspareilsmyn/annualtables/internal/clock"
	"github.com/sanspareilsmyn/annualtables/internal/source"
)

// Sentinels held by extreme-tracking cells until their first update. They sit far
// outside any physical sample range; anything beyond displayLimit renders as "-".
const (
	unsetHigh    = math.MaxFloat64
	unsetLow     = -math.MaxFloat64
	displayLimit = 1.0e280
)

const (
	// DefaultDigits is used when a field does not specify its precision.
	DefaultDigits = 2

	reportFor      = "Entire Facility"
	reportSubtitle = "Custom Annual Report"
)

// Cell is the accumulator for one (entity, field) pair.
type Cell struct {
	Accumulated float64
	// Duration is the elapsed hours folded into time-weighted kinds.
	Duration  float64
	Timestamp clock.Timestamp
	// Deferred holds raw samples for the binning kinds.
	Deferred []float64

	handle   source.Handle
	bound    bool
	captured bool
}

// Bound reports whether the cell has a value source.
func (c Cell) Bound() bool { return c.bound }

// Field is one declared column group of a table.
type Field struct {
	Variable string
	Header   string
	Kind     aggregation.Kind
	Digits   int

	meta  source.Metadata
	found bool
	cells []Cell
}

// Metadata returns the resolved source metadata and whether the variable was found.
func (f *Field) Metadata() (source.Metadata, bool) { return f.meta, f.found }

// rate converts a per-step sum into a per-second rate for accumulated sources.
func (f *Field) rate(v float64, step clock.Step) float64 {
	if f.meta.Accumulated && step.Seconds > 0 {
		return v / step.Seconds
	}
	return v
}

// weighted is the contribution of one sample to a time-weighted sum.
func (f *Field) weighted(v float64, step clock.Step) float64 {
	if f.meta.Accumulated {
		return v
	}
	return v * step.Elapsed
}

// Stats counts engine activity for observability.
type Stats struct {
	Steps          uint64
	Samples        uint64
	ExtremeUpdates uint64
	HoursUpdates   uint64
	ScanWrites     uint64
}

func (s *Stats) add(o Stats) {
	s.Steps += o.Steps
	s.Samples += o.Samples
	s.ExtremeUpdates += o.ExtremeUpdates
	s.HoursUpdates += o.HoursUpdates
	s.ScanWrites += o.ScanWrites
}

// Table is one annual report.
type Table struct {
	name     string
	fields   []*Field
	entities []string
	bound    bool
	warnings []string
	stats    Stats
	logger   *zap.Logger
}

// NewTable creates an empty, unbound table.
func NewTable(name string, logger *zap.Logger) *Table {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Table{
		name:   name,
		logger: logger.With(zap.String("table", name)),
	}
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Bound reports whether Bind has completed.
func (t *Table) Bound() bool { return t.bound }

// Entities returns the sorted entity names that form the table rows.
func (t *Table) Entities() []string {
	out := make([]string, len(t.entities))
	copy(out, t.entities)
	return out
}

// Fields returns the declared fields in order.
func (t *Table) Fields() []*Field {
	out := make([]*Field, len(t.fields))
	copy(out, t.fields)
	return out
}

// Cell returns a copy of the cell at (row, field). Indices outside the bound grid
// are an invariant violation and panic.
func (t *Table) Cell(row, field int) Cell {
	return t.fields[field].cells[row]
}

// Warnings lists configuration problems recorded while declaring fields.
func (t *Table) Warnings() []string {
	out := make([]string, len(t.warnings))
	copy(out, t.warnings)
	return out
}

// Stats returns the accumulation counters.
func (t *Table) Stats() Stats { return t.stats }

// AddField appends a field whose column header is derived from its variable name.
func (t *Table) AddField(variable string, kind aggregation.Kind, digits int) error {
	return t.AddFieldWithHeader(variable, "", kind, digits)
}

// AddFieldWithHeader appends a field with an explicit column header. An empty
// header falls back to the variable name.
func (t *Table) AddFieldWithHeader(variable, header string, kind aggregation.Kind, digits int) error {
	if t.bound {
		return ErrTableBound
	}
	if !kind.Valid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(header) == "" {
		header = defaultHeader(variable)
	}
	t.fields = append(t.fields, &Field{
		Variable: variable,
		Header:   header,
		Kind:     kind,
		Digits:   digits,
	})
	return nil
}

// AddFieldNamed appends a field whose aggregation is given by its configuration
// name. An unrecognized name is recorded as a warning and the field falls back to
// SumOrAverage.
func (t *Table) AddFieldNamed(variable, header, aggregationName string, digits int) error {
	kind, err := aggregation.Parse(aggregationName)
	if err != nil {
		t.warnings = append(t.warnings, err.Error())
		t.logger.Warn("Invalid aggregation type, defaulting",
			zap.String("variable", variable),
			zap.String("aggregation", aggregationName),
			zap.Stringer("default", kind),
		)
	}
	return t.AddFieldWithHeader(variable, header, kind, digits)
}

// defaultHeader turns an all-caps variable name into a readable heading.
func defaultHeader(variable string) string {
	v := strings.TrimSpace(variable)
	if v == strings.ToUpper(v) {
		// Casers are stateful, so one is built per call.
		return cases.Title(language.English).String(strings.ToLower(v))
	}
	return v
}
