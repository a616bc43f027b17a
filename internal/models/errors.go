package models

import "errors"

var (
	// ErrValidation marks a request the caller has to fix.
	ErrValidation = errors.New("invalid request")
	// ErrNotFound marks a lookup that matched nothing.
	ErrNotFound = errors.New("not found")
)
