package core

import "errors"

// Error codes reported to clients.
const (
	ErrCodeEmptyMessage = "empty_message"
	ErrCodeRateLimited  = "rate_limited"
	ErrCodeBadRequest   = "bad_request"
)

var (
	// ErrCorruptSnapshot marks a snapshot that exists but cannot be decoded.
	// The process must not start on top of it.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
	// ErrNoSnapshotter is returned by Save/Load on a store built without persistence.
	ErrNoSnapshotter = errors.New("no snapshotter configured")
	// ErrSaveFailed wraps any snapshot write failure.
	ErrSaveFailed = errors.New("save snapshot")

	// ErrEmptyMessage is reported when sender or text sanitize to nothing.
	ErrEmptyMessage = coreError(ErrCodeEmptyMessage, "sender and text must not be empty")
	// ErrRateLimited is reported when a connection sends too fast.
	ErrRateLimited = coreError(ErrCodeRateLimited, "too many messages")
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
