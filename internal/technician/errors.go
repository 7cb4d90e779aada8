package technician

import (
	"errors"
	"fmt"
)

// ErrValidation is the parent of every input error in this package.
var ErrValidation = errors.New("technician: validation failed")

var (
	ErrMissingTechnician = fmt.Errorf("%w: technician id is required", ErrValidation)
	ErrMissingJob        = fmt.Errorf("%w: job name is required", ErrValidation)
	ErrInvalidAmount     = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrMissingDate       = fmt.Errorf("%w: date is required", ErrValidation)
	ErrSkillIndex        = fmt.Errorf("%w: skill index out of range", ErrValidation)
	ErrInvalidAvailable  = fmt.Errorf("%w: unknown availability", ErrValidation)
)

// ErrProfileNotFound is returned when no profile exists for an id.
var ErrProfileNotFound = errors.New("technician: profile not found")

// BackendError is a refusal reported by the remote store. Client errors
// (4xx) are relayed to the caller with their status and message.
type BackendError interface {
	error
	HTTPStatus() int
	RejectionReason() string
}
