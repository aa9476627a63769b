package report

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/annualtables/internal/aggregation"
	"github.com/sanspareilsmyn/annualtables/internal/source"
)

// Bind resolves every field's variable, fixes the row order as the sorted union of
// all keys seen, and allocates the cell grid. Keys merge case-insensitively and a
// row shows the first spelling seen. It runs exactly once per table.
func (t *Table) Bind(r source.Resolver) error {
	if t.bound {
		return ErrAlreadyBound
	}

	// seen maps normalized key to the spelling shown in the row head.
	seen := make(map[string]string)
	handles := make([]map[string]source.Handle, len(t.fields))
	for i, f := range t.fields {
		b, ok := r.Resolve(f.Variable)
		if !ok {
			t.logger.Warn("Variable not found, column will be empty",
				zap.String("variable", f.Variable),
				zap.Stringer("aggregation", f.Kind),
			)
			continue
		}
		f.meta = b.Metadata
		f.found = true
		handles[i] = make(map[string]source.Handle, len(b.Keys))
		for _, kh := range b.Keys {
			k := entityKey(kh.Key)
			handles[i][k] = kh.Handle
			if _, ok := seen[k]; !ok {
				seen[k] = kh.Key
			}
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return seen[keys[a]] < seen[keys[b]] })
	t.entities = make([]string, len(keys))
	for row, k := range keys {
		t.entities[row] = seen[k]
	}

	for i, f := range t.fields {
		f.cells = make([]Cell, len(t.entities))
		for row, k := range keys {
			c := &f.cells[row]
			c.handle = source.NoHandle
			if h, ok := handles[i][k]; ok {
				c.handle = h
				c.bound = true
			}
			c.Accumulated = initialValue(f.Kind)
		}
	}
	t.bound = true

	t.logger.Info("Table bound",
		zap.Int("fields", len(t.fields)),
		zap.Int("entities", len(t.entities)),
	)
	return nil
}

func entityKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// initialValue seeds extreme-tracking cells with the sentinel their first
// sample always beats.
func initialValue(k aggregation.Kind) float64 {
	switch k {
	case aggregation.Maximum, aggregation.MaximumWhileShown:
		return unsetLow
	case aggregation.Minimum, aggregation.MinimumWhileShown:
		return unsetHigh
	}
	return 0
}
