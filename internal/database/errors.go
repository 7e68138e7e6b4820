package database

import "errors"

// ErrNotFound is returned when no stored result matches the lookup.
var ErrNotFound = errors.New("result not found")
