package domain

import "errors"

// Errors a tool can recover from by reporting them back to the model.
var (
	ErrNotAllowed   = errors.New("not allowed")
	ErrProcessStart = errors.New("process could not start")
)
