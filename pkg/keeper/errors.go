package keeper

import "errors"

var (
	// ErrAlreadyRunning is returned by Start when the pool is running.
	ErrAlreadyRunning = errors.New("keeper: already running")

	// ErrInvalidWorkers is returned by New when the worker count is below 1.
	ErrInvalidWorkers = errors.New("keeper: worker count must be at least 1")

	// ErrNilPromise is returned by SubmitPromise when given a nil Promise.
	ErrNilPromise = errors.New("keeper: submit requires a Promise")
)
