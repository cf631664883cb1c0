package errors

import "errors"

var (
	ErrResponseNotFound      = errors.New("response not found")
	ErrInvalidResponseInput  = errors.New("invalid response input")
	ErrDuplicateResponse     = errors.New("duplicate response")
	ErrNoResponseIDs         = errors.New("no response ids provided")
	ErrInvalidFlag           = errors.New("unknown response flag")
	ErrInvalidListFilter     = errors.New("unknown list filter")
	ErrInvalidNoteInput      = errors.New("invalid note input")
	ErrEncryptionUnavailable = errors.New("payload encryption is not configured")
	ErrUnauthorizedAccount   = errors.New("account does not own this response")
)
