package bookingservice

import (
	"errors"
	"net/http"
)

// RequestError is a refusal whose message is shown to the caller verbatim.
type RequestError struct {
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string { return e.Message }

func (e *RequestError) Unwrap() error { return e.Err }

func badRequest(msg string) *RequestError {
	return &RequestError{Status: http.StatusBadRequest, Message: msg}
}

var (
	ErrNoServices    = badRequest("At least one service is required")
	ErrMissingDate   = badRequest("Date is required")
	ErrInvalidDate   = badRequest("Date must be an RFC 3339 timestamp")
	ErrPastDate      = badRequest("Date is in the past")
	ErrInvalidPrice  = badRequest("Service price must not be negative")
	ErrTotalMismatch = badRequest("Total does not match the selected services")
	ErrSlotFull      = &RequestError{Status: http.StatusConflict, Message: "Slot full"}
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("bookingservice: not found")

	// ErrDuplicateKey is returned when an idempotency key is already stored.
	ErrDuplicateKey = errors.New("bookingservice: duplicate idempotency key")
)
