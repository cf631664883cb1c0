package errors

import "errors"

var (
	ErrTemplateNotFound    = errors.New("email template not found")
	ErrNoTransport         = errors.New("no mail transport configured")
	ErrSendFailed          = errors.New("mail delivery failed")
	ErrInvalidMessage      = errors.New("invalid mail message")
	ErrInvalidTransportURL = errors.New("invalid mail transport url")
)
