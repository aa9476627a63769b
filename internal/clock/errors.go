package clock

import "errors"

var (
	ErrUnknownStepKind = errors.New("unknown step kind")
	ErrInvalidClock    = errors.New("invalid clock reading")
)
