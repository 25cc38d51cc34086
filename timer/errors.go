package timer

import "errors"

var (
	// ErrInvalidArgument is returned when a handle is requested with an
	// empty name or a nil handle is recorded.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlreadyRecorded is returned when a handle is completed twice.
	ErrAlreadyRecorded = errors.New("handle already recorded")

	// ErrAlreadyInitialized is returned when the process-wide registry is
	// reconfigured after first use.
	ErrAlreadyInitialized = errors.New("default registry already initialized")
)
