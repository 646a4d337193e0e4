package eval

import "errors"

// Sentinel kinds for extraction errors.
var (
	ErrMalformedOutput = errors.New("malformed model output")
)
