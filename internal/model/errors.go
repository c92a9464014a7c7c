package model

import "errors"

var (
	// ErrDataUnavailable means there is no usable price history.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrInvalidSetup means the entry is non-positive or not above the anchor.
	ErrInvalidSetup = errors.New("invalid setup")
	// ErrConfiguration means capital or risk percentage is out of range.
	ErrConfiguration = errors.New("configuration error")
	// ErrUnknownField is returned when editing a field that does not exist.
	ErrUnknownField = errors.New("unknown field")
)
