package report

import "errors"

// ErrUnknownFormat is returned when a report format name is not recognized.
var ErrUnknownFormat = errors.New("unknown report format")
