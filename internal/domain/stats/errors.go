package stats

import "errors"

// Domain errors for the stats store. Infrastructure maps driver errors
// onto these so callers never branch on pgx internals.
var (
	// ErrUserNotFound is returned when a user is not in the store.
	ErrUserNotFound = errors.New("stats: user not found")

	// ErrChatNotFound is returned when a chat is not in the store.
	ErrChatNotFound = errors.New("stats: chat not found")

	// ErrInvalidUserID is returned when a user ID fails validation.
	ErrInvalidUserID = errors.New("stats: invalid user id")

	// ErrInvalidChatID is returned when a chat ID fails validation.
	ErrInvalidChatID = errors.New("stats: invalid chat id")

	// ErrInvalidMessageType is returned for an unknown message type tag.
	ErrInvalidMessageType = errors.New("stats: invalid message type")

	// ErrStorageUnavailable wraps connectivity and query failures.
	ErrStorageUnavailable = errors.New("stats: storage unavailable")
)
