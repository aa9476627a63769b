package aggregation

import "errors"

var (
	ErrUnknownKind = errors.New("invalid aggregation type")
)
