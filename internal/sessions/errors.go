package sessions

import "errors"

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("sessions: session not found")

	// ErrInvalidDate is returned when a schedule date is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("sessions: date must be YYYY-MM-DD")
)
