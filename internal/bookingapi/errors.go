package bookingapi

import (
	"errors"
	"fmt"

	"github.com/wolfman30/doorstep/internal/technician"
)

var _ technician.BackendError = (*APIError)(nil)

// ErrMalformedResponse is returned when a 2xx reply is not valid JSON.
var ErrMalformedResponse = errors.New("bookingapi: malformed response")

// APIError is a non-2xx reply from the Booking Service.
type APIError struct {
	Status  int
	Message string
	Body    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("booking service returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("booking service returned %d: %s", e.Status, e.Body)
}

// HTTPStatus is the reply's status code.
func (e *APIError) HTTPStatus() int {
	return e.Status
}

// RejectionReason is the server's error message, or "" when it sent none.
func (e *APIError) RejectionReason() string {
	return e.Message
}
