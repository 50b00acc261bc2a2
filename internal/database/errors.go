package database

import "errors"

// ErrNotFound is returned when the history database or a run does not exist.
var ErrNotFound = errors.New("not found")
