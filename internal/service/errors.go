package service

import "bstn/internal/domain"

// Errors returned by the services. They are the domain sentinels so callers
// may match either name with errors.Is.
var (
	ErrValidation        = domain.ErrValidation
	ErrInvalidRoomType   = domain.ErrInvalidRoomType
	ErrRoomNotFound      = domain.ErrRoomNotFound
	ErrStayNotFound      = domain.ErrStayNotFound
	ErrInvalidDateRange  = domain.ErrInvalidDateRange
	ErrRoomUnavailable   = domain.ErrRoomUnavailable
	ErrNoProviderLinked  = domain.ErrNoProviderLinked
	ErrForbidden         = domain.ErrForbidden
	ErrInvalidTransition = domain.ErrInvalidTransition
	ErrTooLate           = domain.ErrTooLate
	ErrNotFound          = domain.ErrNotFound
	ErrRateLimited       = domain.ErrRateLimited
)
