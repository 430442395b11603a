package store

import "errors"

var (
	ErrNotFound    = errors.New("record not found")
	ErrMissingUser = errors.New("missing user id")
	ErrInvalidDay  = errors.New("day outside protocol range")
)
