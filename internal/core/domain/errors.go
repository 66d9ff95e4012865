package domain

import "errors"

var (
	ErrSessionNotFound = errors.New("search session not found")
	ErrSessionClosed   = errors.New("search session is closed")
	ErrUnknownFilter   = errors.New("unknown filter key")
	ErrPlaceNotFound   = errors.New("place not found")
	ErrInvalidPage     = errors.New("page must be >= 1")
)
