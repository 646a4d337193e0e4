package engine

import "errors"

// Sentinel kinds for engine errors.
var (
	ErrModelUnavailable = errors.New("model unavailable")
	ErrInference        = errors.New("inference failed")
	ErrPoolClosed       = errors.New("session pool closed")
	ErrInvalidVocab     = errors.New("invalid vocabulary file")
)
