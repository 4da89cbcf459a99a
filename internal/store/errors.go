package store

import "errors"

var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrDuplicateKey       = errors.New("already exists")
	ErrConcurrentModified = errors.New("record modified concurrently")
	ErrInvalidTransition  = errors.New("invalid job state transition")
)
