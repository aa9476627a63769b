package message

import "errors"

var (
	ErrJSONUnmarshalFailed = errors.New("failed to unmarshal JSON frame")
	ErrUnknownFrameType    = errors.New("unknown frame type")
	ErrInvalidFrame        = errors.New("invalid timestep frame")
	ErrZeroStepLength      = errors.New("step length must be positive")
)
