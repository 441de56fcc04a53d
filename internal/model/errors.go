package model

import "errors"

var (
	ErrNoFiles       = errors.New("no files uploaded")
	ErrTooManyFiles  = errors.New("maximum files exceeded")
	ErrMissingURL    = errors.New("url is required")
	ErrNotImage      = errors.New("content is not an image")
	ErrBatchInFlight = errors.New("batch already in progress")
)
