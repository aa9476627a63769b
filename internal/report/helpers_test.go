package report

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanspareilsmyn/annualtables/internal/clock"
	"github.com/sanspareilsmyn/annualtables/internal/source"
)

// fixture wraps a source.Store with terse helpers for building scenarios.
type fixture struct {
	t     *testing.T
	store *source.Store
	clock clock.Clock
}

func newFixture(t *testing.T) *fixture {
	return &fixture{
		t:     t,
		store: source.NewStore(),
		clock: clock.Clock{Month: 1, Day: 1, Hour: 1, ZoneStepHours: 1, SystemStepHours: 0.25},
	}
}

// variable declares a zone-cadence variable exposed by keys.
func (fx *fixture) variable(name, units string, accumulated bool, keys ...string) {
	fx.t.Helper()
	fx.variableAt(name, units, accumulated, clock.Zone, keys...)
}

func (fx *fixture) variableAt(name, units string, accumulated bool, cadence clock.StepKind, keys ...string) {
	fx.t.Helper()
	require.NoError(fx.t, fx.store.Declare(name, source.Metadata{Accumulated: accumulated, Cadence: cadence, Units: units}))
	for _, k := range keys {
		_, err := fx.store.AddKey(name, k)
		require.NoError(fx.t, err)
	}
}

func (fx *fixture) set(name, key string, v float64) {
	fx.t.Helper()
	require.NoError(fx.t, fx.store.Set(name, key, v))
}

// at moves the clock to the given day and hour and returns the zone step.
func (fx *fixture) at(day, hour int) clock.Step {
	fx.clock.Day = day
	fx.clock.Hour = hour
	return fx.clock.Step(clock.Zone)
}
