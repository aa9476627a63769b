package report

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/annualtables/internal/clock"
	"github.com/sanspareilsmyn/annualtables/internal/source"
	"github.com/sanspareilsmyn/annualtables/internal/units"
)

// Registry owns the tables of one run. The host creates it, adds tables, binds
// once, accumulates every timestep and renders at the end of the run.
type Registry struct {
	tables []*Table
	logger *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{logger: logger}
}

// Logger returns the logger new tables should derive from.
func (r *Registry) Logger() *zap.Logger { return r.logger }

// Add appends a table. Tables render in the order they were added.
func (r *Registry) Add(t *Table) {
	r.tables = append(r.tables, t)
}

// Tables returns the registered tables in order.
func (r *Registry) Tables() []*Table {
	out := make([]*Table, len(r.tables))
	copy(out, r.tables)
	return out
}

// Bind binds every table. Failures are collected and returned together.
func (r *Registry) Bind(res source.Resolver) error {
	var errs []error
	for _, t := range r.tables {
		if err := t.Bind(res); err != nil {
			errs = append(errs, fmt.Errorf("table %q: %w", t.Name(), err))
		}
	}
	r.logger.Debug("Registry bound", zap.Int("tables", len(r.tables)))
	return errors.Join(errs...)
}

// Accumulate feeds one timestep to every table.
func (r *Registry) Accumulate(step clock.Step, sampler source.Sampler) {
	for _, t := range r.tables {
		t.Accumulate(step, sampler)
	}
}

// Render renders every table.
func (r *Registry) Render(style units.Style) []Grid {
	grids := make([]Grid, 0, len(r.tables))
	for _, t := range r.tables {
		grids = append(grids, t.Render(style))
	}
	return grids
}

// Stats sums the accumulation counters of all tables.
func (r *Registry) Stats() Stats {
	var s Stats
	for _, t := range r.tables {
		s.add(t.Stats())
	}
	return s
}

// TOCEntry is one table-of-contents line for an index page.
type TOCEntry struct {
	Label  string
	For    string
	Anchor string
}

// TableOfContents returns one entry per table.
func (r *Registry) TableOfContents() []TOCEntry {
	out := make([]TOCEntry, 0, len(r.tables))
	for _, t := range r.tables {
		out = append(out, TOCEntry{
			Label:  t.Name(),
			For:    reportFor,
			Anchor: AnchorName(t.Name(), reportFor),
		})
	}
	return out
}

// AnchorName builds an HTML anchor from a report name and its "for" label by
// keeping only letters and digits.
func AnchorName(reportName, forName string) string {
	var b strings.Builder
	for _, r := range reportName + forName {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
