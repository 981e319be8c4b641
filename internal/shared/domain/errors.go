package domain

import "errors"

// Error kinds shared by every bounded context. Callers match them with
// errors.Is; producers wrap them with context.
var (
	// ErrInvalidArgument marks a request the domain refuses to evaluate.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorageUnavailable marks a failed read or write against durable storage.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
