package tracking

import "errors"

var (
	// ErrPositionUnavailable is returned by Start when there is no usable fix.
	ErrPositionUnavailable = errors.New("position unavailable")

	// ErrNotTracking is returned by operations that need an Active session.
	ErrNotTracking = errors.New("session is not tracking")

	// ErrAlreadyStarted is returned by Start on a session that left Idle.
	ErrAlreadyStarted = errors.New("session already started")

	// ErrInvalidSample is returned for NaN or out of range coordinates.
	ErrInvalidSample = errors.New("invalid position sample")

	// ErrLowAccuracy is returned when the accuracy policy rejects a sample.
	ErrLowAccuracy = errors.New("position sample accuracy too low")
)
