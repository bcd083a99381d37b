package uc

import "errors"

var (
	// ErrUserNotFound is returned when a user is not found in the repository
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidAPIKey is returned when an API key cannot be validated
	ErrInvalidAPIKey = errors.New("invalid API key")
	// ErrAlreadyBootstrapped is returned when the initial admin already exists
	ErrAlreadyBootstrapped = errors.New("system already bootstrapped")
	// ErrInvalidInput is returned for structurally invalid requests
	ErrInvalidInput = errors.New("invalid input")
)
