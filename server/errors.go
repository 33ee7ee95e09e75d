package server

import "errors"

var (
	// ErrMissingAddress is returned when the server address is not provided.
	ErrMissingAddress = errors.New("server address is required")

	// ErrServerAlreadyRunning is returned by Start when the server is running.
	ErrServerAlreadyRunning = errors.New("server is already running")
)
