// Package source resolves report variable names to sampled value sources and
// reads their current values.
package source

import "github.com/sanspareilsmyn/annualtables/internal/clock"

// Handle identifies one sampled value (one variable for one key).
type Handle int

// NoHandle marks a cell that has nothing to sample.
const NoHandle Handle = -1

// Metadata is shared by every key exposing a variable.
type Metadata struct {
	// Accumulated is true when samples are already a running sum over the step,
	// false when they are instantaneous and must be weighted by elapsed time.
	Accumulated bool
	Cadence     clock.StepKind
	Units       string
}

// KeyHandle binds one key (entity) to the handle sampling it.
type KeyHandle struct {
	Key    string
	Handle Handle
}

// Binding is the resolved form of a variable name.
type Binding struct {
	Metadata
	Keys []KeyHandle
}

// Resolver turns a variable name into its binding.
type Resolver interface {
	Resolve(name string) (Binding, bool)
}

// Sampler reads the current value behind a handle. It must be cheap and free of
// side effects; the engine calls it up to fields*entities times per step.
type Sampler interface {
	Value(h Handle) float64
}
