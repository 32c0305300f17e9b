package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrMissingCoordinates = errors.New("missing lat/lng parameters")
	ErrInvalidCoordinates = errors.New("invalid lat/lng format")
	ErrNoCampuses         = errors.New("no universities found")
	ErrMissingEmail       = errors.New("email required")
)
