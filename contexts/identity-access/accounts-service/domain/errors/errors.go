package errors

import "errors"

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrInvalidAccountInput = errors.New("invalid account input")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidSessionToken = errors.New("invalid session token")
	ErrInvalidSMTPURL      = errors.New("invalid smtp url")
)
