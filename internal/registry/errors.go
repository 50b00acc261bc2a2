package registry

import "errors"

// ErrInvalidSeed is returned when the seed URL cannot be parsed or is not
// an absolute http(s) URL.
var ErrInvalidSeed = errors.New("invalid seed URL")
