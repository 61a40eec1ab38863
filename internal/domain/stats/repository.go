package stats

import "context"

// UserRepository persists chat participants.
type UserRepository interface {
	// Upsert creates the user or refreshes the identity fields
	// (username, first/last name) of an existing one. Experience and
	// level are never touched by an upsert.
	Upsert(ctx context.Context, id UserID, username, firstName, lastName string) error

	// GetByID returns the user or ErrUserNotFound.
	GetByID(ctx context.Context, id UserID) (*User, error)

	// AddExperience atomically adjusts total experience by delta
	// (negative for debits). Returns the new total.
	AddExperience(ctx context.Context, id UserID, delta int) (int, error)

	// SetExperience overwrites total experience with an absolute value.
	SetExperience(ctx context.Context, id UserID, value int) error

	// SetLevel overwrites the cached level.
	SetLevel(ctx context.Context, id UserID, level int) error

	// Delete removes the user row. Recorded events, awards and cards
	// referencing the user are removed with it.
	Delete(ctx context.Context, id UserID) error

	// ListAll returns every known user, ordered by ID.
	ListAll(ctx context.Context) ([]User, error)
}

// ChatRepository persists group chats the bot has seen.
type ChatRepository interface {
	// Upsert creates the chat or refreshes its title (last write wins).
	Upsert(ctx context.Context, id ChatID, title string) error

	// GetByID returns the chat or ErrChatNotFound.
	GetByID(ctx context.Context, id ChatID) (*Chat, error)

	// ListAll returns every known chat, ordered by ID.
	ListAll(ctx context.Context) ([]Chat, error)
}

// EventRepository is the append-only message event log plus the
// aggregation queries derived from it. All windows are half-open
// [Start, End); nil bounds are unbounded.
type EventRepository interface {
	// Append records one message event. Events are immutable.
	Append(ctx context.Context, ev MessageEvent) error

	// CountsByUser returns the per-type counts and total for one user
	// across all chats within the window.
	CountsByUser(ctx context.Context, userID UserID, w Window) (TypeCounts, error)

	// CountByUserInChat returns one user's total message count in one
	// chat within the window.
	CountByUserInChat(ctx context.Context, userID UserID, chatID ChatID, w Window) (int, error)

	// Leaderboard ranks users in one chat by the given key within the
	// window, ties broken by earliest event in the window. limit <= 0
	// returns all rows.
	Leaderboard(ctx context.Context, chatID ChatID, w Window, key SortKey, limit int) ([]RankedRow, error)

	// TopByType ranks users in one chat by count of one message type
	// within the window. An empty type counts all messages.
	TopByType(ctx context.Context, chatID ChatID, t MessageType, w Window, limit int) ([]UserCount, error)

	// TotalMessages counts all events across all chats in the window.
	TotalMessages(ctx context.Context, w Window) (int, error)

	// ActiveChats returns the IDs of chats with at least one event in
	// the window.
	ActiveChats(ctx context.Context, w Window) ([]ChatID, error)

	// ChatSummaries returns per-chat activity totals for the admin view.
	ChatSummaries(ctx context.Context) ([]ChatSummary, error)
}

// Resetter wipes the entire store and leaves it in a usable empty
// state. Only the admin reset flow may hold one.
type Resetter interface {
	Reset(ctx context.Context) error
}
