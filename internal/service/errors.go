package service

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrSelfConversation   = errors.New("cannot start a conversation with yourself")
	ErrInvalidParticipant = errors.New("participant does not exist or is deactivated")
	ErrEmptyContent       = errors.New("message content is required")
	ErrContentTooLong     = errors.New("message content exceeds the maximum length")
)
