// Package booking holds the customer booking core: the selection of
// offerings, the schedule, the request snapshot and the submit outcome.
package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOfferingID means a toggle referenced an id outside the catalog.
	// Correct catalog wiring never produces it.
	ErrInvalidOfferingID = errors.New("booking: invalid offering id")

	// ErrPastDate is returned by SetDate for a calendar date before today.
	ErrPastDate = errors.New("booking: date is in the past")

	// ErrUnknownSlot is returned when a slot label is outside the vocabulary.
	ErrUnknownSlot = errors.New("booking: unknown time slot")

	// ErrInvalidTime is returned when a free time-of-day cannot be parsed.
	ErrInvalidTime = errors.New("booking: invalid time of day")

	// ErrSubmissionInFlight is returned when a submit is attempted while one is sending.
	ErrSubmissionInFlight = errors.New("booking: submission already in flight")
)

// ErrValidation is the parent of every local pre-submission failure.
var ErrValidation = errors.New("booking: validation failed")

var (
	ErrEmptySelection = fmt.Errorf("%w: no services selected", ErrValidation)
	ErrMissingDate    = fmt.Errorf("%w: date is required", ErrValidation)
	ErrMissingTime    = fmt.Errorf("%w: time is required", ErrValidation)
	ErrMissingAddress = fmt.Errorf("%w: address is required", ErrValidation)
)

// User-facing messages.
const (
	MsgMissingDateTime = "Please select both a date and time slot."
	MsgMissingAddress  = "Please select date and provide address."
	MsgEmptySelection  = "Please select at least one service."
	MsgGenericReject   = "Something went wrong"
	MsgTransport       = "Failed to book appointment"
	MsgAccepted        = "Service booked successfully!"
)

// UserMessage maps a validation error to the message shown to the user.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptySelection):
		return MsgEmptySelection
	case errors.Is(err, ErrMissingAddress):
		return MsgMissingAddress
	case errors.Is(err, ErrMissingDate), errors.Is(err, ErrMissingTime):
		return MsgMissingDateTime
	case err == nil:
		return ""
	default:
		return MsgGenericReject
	}
}

// Rejection is implemented by errors that carry a definitive refusal from
// the Booking Service. RejectionReason may be empty when the server sent no
// error field.
type Rejection interface {
	error
	RejectionReason() string
}
