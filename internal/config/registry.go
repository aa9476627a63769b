package config

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/annualtables/internal/aggregation"
	"github.com/sanspareilsmyn/annualtables/internal/clock"
	"github.com/sanspareilsmyn/annualtables/internal/report"
	"github.com/sanspareilsmyn/annualtables/internal/source"
)

// BuildRegistry declares the configured variables in a fresh store and builds one
// table per table group. A malformed group is logged and skipped; the rest of the
// run goes on without it. Tables are returned unbound.
func BuildRegistry(cfg *Config, logger *zap.Logger) (*source.Store, *report.Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := source.NewStore()
	for _, vc := range cfg.Variables {
		if err := declareVariable(store, vc); err != nil {
			return nil, nil, err
		}
	}

	reg := report.NewRegistry(logger.Named("report"))
	for i, tc := range cfg.Tables {
		if tc.Name == "" || len(tc.Fields) == 0 {
			logger.Error("Skipping malformed table group",
				zap.Int("index", i),
				zap.String("name", tc.Name),
				zap.Int("fields", len(tc.Fields)),
			)
			continue
		}
		tbl := report.NewTable(tc.Name, reg.Logger())
		for _, fc := range tc.Fields {
			digits := report.DefaultDigits
			if fc.Digits != nil {
				digits = *fc.Digits
			}
			name := fc.Aggregation
			if name == "" {
				name = aggregation.SumOrAverage.String()
			}
			if err := tbl.AddFieldNamed(fc.Variable, fc.Header, name, digits); err != nil {
				return nil, nil, fmt.Errorf("table %q: %w", tc.Name, err)
			}
		}
		reg.Add(tbl)
	}

	logger.Info("Registry built",
		zap.Int("variables", len(store.Variables())),
		zap.Int("tables", len(reg.Tables())),
	)
	return store, reg, nil
}

func declareVariable(store *source.Store, vc VariableConfig) error {
	cadence, err := clock.ParseStepKind(vc.Cadence)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidVariable, vc.Name, err)
	}
	meta := source.Metadata{Accumulated: vc.Accumulated, Cadence: cadence, Units: vc.Units}
	if err := store.Declare(vc.Name, meta); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidVariable, vc.Name, err)
	}
	for _, key := range vc.Keys {
		if _, err := store.AddKey(vc.Name, key); err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidVariable, vc.Name, err)
		}
	}
	return nil
}
