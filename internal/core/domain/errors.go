package domain

import "errors"

var (
	// ErrInvalidCoordinates is returned when a latitude or longitude is out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrInvalidRadius is returned for a negative or non-finite search radius.
	ErrInvalidRadius = errors.New("invalid radius")

	// ErrInvalidRequest is returned for a malformed request.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound is returned when nothing matches: an empty shopping list, no resolvable
	// items, no candidate stores, no covering subset, or a missing entity.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a store already stocks the item being added.
	ErrConflict = errors.New("conflict")
)
