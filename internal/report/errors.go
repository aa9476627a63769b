package report

import "errors"

var (
	ErrTableBound   = errors.New("table already bound, fields are fixed")
	ErrAlreadyBound = errors.New("table bound twice")
	ErrInvalidKind  = errors.New("aggregation kind outside the known set")
	ErrEmptyTable   = errors.New("table has no name or no fields")
)
