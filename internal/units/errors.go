package units

import "errors"

var (
	ErrUnknownStyle = errors.New("unknown unit style")
)
