package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest     = errors.New("bad request")
	ErrBackpressure   = errors.New("analysis queue is full")
	ErrEmptyUpload    = errors.New("uploaded file is empty")
	ErrUploadTooLarge = errors.New("uploaded file is too large")
	ErrNotReady       = errors.New("analysis not complete")
)
