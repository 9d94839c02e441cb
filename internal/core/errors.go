package core

import "errors"

// Error codes sent to clients in error frames.
const (
	ErrCodeProtocol          = "protocol_error"
	ErrCodeUnauthorized      = "unauthorized"
	ErrCodeRoomNotFound      = "room_not_found"
	ErrCodeUserNotFound      = "user_not_found"
	ErrCodeInvalidOperation  = "invalid_operation"
	ErrCodeNotParticipant    = "not_participant"
	ErrCodePersistenceFailed = "persistence_failed"
	ErrCodeRateLimited       = "rate_limited"
)

var (
	ErrAuthRequired   = errors.New("authentication required")
	ErrRoomNotFound   = errors.New("room not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrSelfRoom       = errors.New("cannot open a chat with yourself")
	ErrNotParticipant = errors.New("not a participant of this room")
	ErrMalformedFrame = errors.New("malformed frame")
	ErrPersistence    = errors.New("message could not be stored")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

// ErrorCode returns the wire code for a chat error.
func ErrorCode(err error) string {
	var ce *CoreError
	switch {
	case errors.As(err, &ce):
		return ce.Code
	case errors.Is(err, ErrAuthRequired):
		return ErrCodeUnauthorized
	case errors.Is(err, ErrRoomNotFound):
		return ErrCodeRoomNotFound
	case errors.Is(err, ErrUserNotFound):
		return ErrCodeUserNotFound
	case errors.Is(err, ErrSelfRoom):
		return ErrCodeInvalidOperation
	case errors.Is(err, ErrNotParticipant):
		return ErrCodeNotParticipant
	case errors.Is(err, ErrPersistence):
		return ErrCodePersistenceFailed
	default:
		return ErrCodeProtocol
	}
}
