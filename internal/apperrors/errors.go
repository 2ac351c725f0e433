// Package apperrors defines the failure taxonomy shared by all controllers.
// Handlers map these onto transport statuses; controllers never return raw
// gorm or driver errors upward.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation error")
	ErrInternal     = errors.New("internal error")
)

func NotFound(entity string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, entity)
}

func Unauthorized(reason string) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, reason)
}

func Forbidden(reason string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, reason)
}

func Conflict(reason string) error {
	return fmt.Errorf("%w: %s", ErrConflict, reason)
}

func Validation(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}

func Internal(err error) error {
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

// PreconditionCode is the machine-readable reason a power-on was refused.
type PreconditionCode string

const (
	CodeNoVenueAssigned PreconditionCode = "NO_VENUE_ASSIGNED"
	CodeVenueInactive   PreconditionCode = "VENUE_INACTIVE"
)

// PreconditionError reports a refused generator power-on. It always carries
// a code the client can branch on and, when a venue is involved, the venue
// name so the message is actionable.
type PreconditionError struct {
	Code      PreconditionCode
	VenueName string
	Message   string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

func NoVenueAssigned() *PreconditionError {
	return &PreconditionError{
		Code:    CodeNoVenueAssigned,
		Message: "Cannot turn on generator: No venue assigned. Please assign this generator to an active venue before operation.",
	}
}

func VenueInactive(venueName string) *PreconditionError {
	return &PreconditionError{
		Code:      CodeVenueInactive,
		VenueName: venueName,
		Message: fmt.Sprintf(
			"Cannot turn on generator: Venue %q has been deactivated. Generator cannot be operated without an active venue.",
			venueName,
		),
	}
}

// AsPrecondition unwraps err into a PreconditionError if it is one.
func AsPrecondition(err error) (*PreconditionError, bool) {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
