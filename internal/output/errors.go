package output

import "errors"

var (
	ErrUnknownFormat   = errors.New("unknown report format")
	ErrOpenStoreFailed = errors.New("failed to open tabular store")
	ErrMigrateFailed   = errors.New("failed to migrate tabular store")
	ErrSaveRunFailed   = errors.New("failed to save run")
	ErrQueryFailed     = errors.New("failed to query tabular store")
)
