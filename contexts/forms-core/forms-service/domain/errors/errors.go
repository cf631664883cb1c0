package errors

import "errors"

var (
	ErrFormNotFound     = errors.New("form not found")
	ErrInvalidFormInput = errors.New("invalid form input")
	ErrDuplicateFormKey = errors.New("form key already exists")
	ErrFormDisabled     = errors.New("form is disabled")
)
