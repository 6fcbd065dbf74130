package model

import "errors"

var (
	// ErrMissingInput marks a required source (signal log, capture
	// export) that is absent. Fatal: the run aborts before correlation.
	ErrMissingInput = errors.New("required input source missing")

	// ErrEmptyInput marks a source that parsed successfully but yielded
	// zero events. Non-fatal: the run short-circuits with a warning and
	// produces no report.
	ErrEmptyInput = errors.New("input source contains no events")
)
