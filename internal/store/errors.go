package store

import "errors"

// ErrNotFound is returned when a lookup by ID or platform ID finds no row.
var ErrNotFound = errors.New("store: not found")

// ErrConflict is returned when an insert would violate a uniqueness
// constraint (e.g. a duplicate platform ID within a server).
var ErrConflict = errors.New("store: conflict")
