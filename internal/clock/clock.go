// Package clock models the host simulation clock: which kind of timestep is being
// reported, how long it lasted, and the encoded month/day/hour/minute stamp used for
// the time of an extreme.
package clock

import (
	"fmt"
	"strings"
)

// StepKind is the cadence a sample is reported at.
type StepKind int

const (
	// Zone is the regular zone timestep.
	Zone StepKind = iota + 1
	// System is the shorter, variable system (HVAC) timestep.
	System
)

func (k StepKind) String() string {
	switch k {
	case Zone:
		return "zone"
	case System:
		return "system"
	}
	return fmt.Sprintf("StepKind(%d)", int(k))
}

// ParseStepKind accepts "zone" or "system" (also "hvac"), ignoring case.
func ParseStepKind(s string) (StepKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zone", "":
		return Zone, nil
	case "system", "hvac":
		return System, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStepKind, s)
}

// Step is everything the engine needs to know about one reported timestep.
type Step struct {
	Kind StepKind
	// Elapsed is the step length in hours.
	Elapsed float64
	// Seconds is the step length in seconds.
	Seconds float64
	Time    Timestamp
}

// Clock is the host's view of the current simulation time. Hour follows the
// hour-ending convention (1..24) and Minute is the end of the step within it.
type Clock struct {
	Month  int
	Day    int
	Hour   int
	Minute int

	ZoneStepHours   float64
	SystemStepHours float64
}

// ElapsedHours is the length of a step of the given kind in hours.
func (c Clock) ElapsedHours(kind StepKind) float64 {
	if kind == System {
		return c.SystemStepHours
	}
	return c.ZoneStepHours
}

// SecondsInStep is the length of a step of the given kind in seconds.
func (c Clock) SecondsInStep(kind StepKind) float64 {
	return c.ElapsedHours(kind) * secondsPerHour
}

// Now encodes the current clock reading.
func (c Clock) Now() Timestamp {
	return Encode(c.Month, c.Day, c.Hour, c.Minute)
}

// Step builds the Step for a timestep of the given kind ending now.
func (c Clock) Step(kind StepKind) Step {
	return Step{
		Kind:    kind,
		Elapsed: c.ElapsedHours(kind),
		Seconds: c.SecondsInStep(kind),
		Time:    c.Now(),
	}
}

// Validate checks that the reading is a plausible calendar position.
func (c Clock) Validate() error {
	if c.Month < 1 || c.Month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidClock, c.Month)
	}
	if c.Day < 1 || c.Day > 31 {
		return fmt.Errorf("%w: day %d", ErrInvalidClock, c.Day)
	}
	if c.Hour < 0 || c.Hour > 24 {
		return fmt.Errorf("%w: hour %d", ErrInvalidClock, c.Hour)
	}
	if c.Minute < 0 || c.Minute > 60 {
		return fmt.Errorf("%w: minute %d", ErrInvalidClock, c.Minute)
	}
	if c.ZoneStepHours < 0 || c.SystemStepHours < 0 {
		return fmt.Errorf("%w: negative step length", ErrInvalidClock)
	}
	return nil
}

const secondsPerHour = 3600.0
