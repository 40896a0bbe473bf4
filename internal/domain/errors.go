package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrDuplicateID  = errors.New("user id already exists")
	// ErrFetchFailed is the generic error for an unsuccessful remote fetch.
	ErrFetchFailed = errors.New("fetch users failed")
)
