package domain

import "errors"

// Booking and catalog failures. Callers match them with errors.Is; wrapping
// with fmt.Errorf("...: %w") keeps them matchable.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidRoomType   = errors.New("invalid room type")
	ErrRoomNotFound      = errors.New("room not found")
	ErrStayNotFound      = errors.New("stay not found")
	ErrInvalidDateRange  = errors.New("invalid date range")
	ErrRoomUnavailable   = errors.New("room is not available for the selected dates")
	ErrNoProviderLinked  = errors.New("room has no linked provider")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrTooLate           = errors.New("booking can no longer be cancelled")
	ErrNotFound          = errors.New("not found")
	ErrRateLimited       = errors.New("too many requests")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrStayNotFound)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrRoomUnavailable)
}

// IsBadRequest reports whether err was caused by the caller's input or the
// booking's current state.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidRoomType) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrTooLate)
}
