package repository

import "errors"

// Sentinel kinds for job registry errors.
var (
	ErrNotFound          = errors.New("job not found")
	ErrExists            = errors.New("job already exists")
	ErrInvalidTransition = errors.New("invalid job status transition")
	ErrStatusMismatch    = errors.New("job status changed")
	ErrInvalidJob        = errors.New("invalid job")
)
