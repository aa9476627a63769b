// Package message decodes the timestep frames that drive a run.
package message

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sanspareilsmyn/annualtables/internal/clock"
)

// FrameType distinguishes a timestep report from the end-of-run marker.
type FrameType string

const (
	FrameTimestep FrameType = "timestep"
	FrameEnd      FrameType = "end"
)

// Frame is one message on the input stream. A timestep frame carries the clock
// reading at the end of the step and the current value of every reported
// (variable, key) pair; an end frame closes the run.
type Frame struct {
	Type            FrameType `json:"type"`
	Step            string    `json:"step"` // "zone" or "system"
	Month           int       `json:"month"`
	Day             int       `json:"day"`
	Hour            int       `json:"hour"`
	Minute          int       `json:"minute"`
	ZoneStepHours   float64   `json:"zoneStepHours"`
	SystemStepHours float64   `json:"systemStepHours"`
	// Values maps variable name to key to value. Values stay loosely typed so a
	// producer may send numbers, numeric strings or null.
	Values map[string]map[string]any `json:"values,omitempty"`
}

// Sample is one decoded (variable, key, value) triple.
type Sample struct {
	Variable string
	Key      string
	Value    float64
}

// ParseFrame decodes and validates one JSON frame. A missing type means timestep.
func ParseFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("%w: %w", ErrJSONUnmarshalFailed, err)
	}
	f.Type = FrameType(strings.ToLower(string(f.Type)))
	switch f.Type {
	case "":
		f.Type = FrameTimestep
	case FrameTimestep, FrameEnd:
	default:
		return Frame{}, fmt.Errorf("%w: %q", ErrUnknownFrameType, f.Type)
	}
	if f.Type == FrameEnd {
		return f, nil
	}
	kind, err := clock.ParseStepKind(f.Step)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %w", ErrInvalidFrame, err)
	}
	if err := f.Clock().Validate(); err != nil {
		return Frame{}, fmt.Errorf("%w: %w", ErrInvalidFrame, err)
	}
	// Samples are weighted by the step length of their own kind.
	if f.Clock().ElapsedHours(kind) <= 0 {
		return Frame{}, fmt.Errorf("%w: %w for %v step", ErrInvalidFrame, ErrZeroStepLength, kind)
	}
	return f, nil
}

// StepKind returns the cadence of a timestep frame. ParseFrame has validated it.
func (f Frame) StepKind() clock.StepKind {
	k, _ := clock.ParseStepKind(f.Step)
	return k
}

// Clock returns the clock reading the frame was stamped with.
func (f Frame) Clock() clock.Clock {
	return clock.Clock{
		Month:           f.Month,
		Day:             f.Day,
		Hour:            f.Hour,
		Minute:          f.Minute,
		ZoneStepHours:   f.ZoneStepHours,
		SystemStepHours: f.SystemStepHours,
	}
}

// Samples returns the numeric values of the frame in a stable order, along with
// the "variable/key" labels of values that were null or not numeric.
func (f Frame) Samples() ([]Sample, []string) {
	var (
		out     []Sample
		skipped []string
	)
	for _, name := range sortedKeys(f.Values) {
		keys := f.Values[name]
		for _, key := range sortedKeys(keys) {
			v, ok := toFloat64(keys[key])
			if !ok {
				skipped = append(skipped, name+"/"+key)
				continue
			}
			out = append(out, Sample{Variable: name, Key: key, Value: v})
		}
	}
	return out, skipped
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// toFloat64 accepts JSON numbers, the integer types a hand-built map may hold and
// numeric strings.
func toFloat64(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// Snippet returns a prefix of raw frame data for log fields.
func Snippet(data []byte, maxLength int) string {
	if maxLength <= 0 {
		return "..."
	}
	if len(data) > maxLength {
		return string(data[:maxLength]) + "..."
	}
	return string(data)
}
