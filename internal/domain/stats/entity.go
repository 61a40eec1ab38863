// Package stats contains the core entities of the chat activity log:
// users, chats, and the append-only message event stream that every
// counter and leaderboard is derived from. This is a pure domain layer
// with zero external dependencies.
package stats

import "time"

// UserID is the platform-assigned unique identifier of a user.
type UserID int64

// IsValid checks if the user ID is valid.
func (id UserID) IsValid() bool {
	return id != 0
}

// ChatID is the platform-assigned unique identifier of a group chat.
type ChatID int64

// IsValid checks if the chat ID is valid.
func (id ChatID) IsValid() bool {
	return id != 0
}

// MessageType classifies a recorded message event.
type MessageType string

// The fixed set of message type tags. Anything the transport cannot
// classify is recorded as TypeOther.
const (
	TypeText    MessageType = "text"
	TypePhoto   MessageType = "photo"
	TypeVoice   MessageType = "voice"
	TypeSticker MessageType = "sticker"
	TypeOther   MessageType = "other"
)

// AllMessageTypes lists every known message type, in display order.
var AllMessageTypes = []MessageType{TypeText, TypePhoto, TypeVoice, TypeSticker, TypeOther}

// IsValid checks if the message type is one of the known tags.
func (t MessageType) IsValid() bool {
	switch t {
	case TypeText, TypePhoto, TypeVoice, TypeSticker, TypeOther:
		return true
	}
	return false
}

// User is a chat participant. Created on the first observed message,
// mutated on awards and admin adjustments, deleted only explicitly.
//
// TotalExperience is the single running counter the engine maintains;
// every other statistic is aggregated from the event stream. It has no
// enforced floor: the purchase flow checks sufficiency before debiting.
// Level is a cached value derived from TotalExperience; it is only ever
// raised, never lowered, even when experience is spent.
type User struct {
	ID              UserID
	Username        string // optional, empty if the platform reports none
	FirstName       string
	LastName        string
	TotalExperience int
	Level           int
}

// DisplayName returns the best human-readable name for the user:
// first/last name parts if present, otherwise the username, otherwise
// a numeric fallback.
func (u *User) DisplayName() string {
	name := joinNameParts(u.FirstName, u.LastName)
	if name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return "user"
}

func joinNameParts(first, last string) string {
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	default:
		return last
	}
}

// Chat is a group conversation the bot has seen activity in.
// Title is last-write-wins and may be empty for chats whose metadata
// never carried one.
type Chat struct {
	ID    ChatID
	Title string
}

// MessageEvent is one recorded message: an append-only fact attributed
// to a user and a chat. Events are never mutated or deleted outside of
// a full store reset.
type MessageEvent struct {
	UserID UserID
	ChatID ChatID
	Type   MessageType
	At     time.Time
}

// TypeCounts holds per-type message counts plus the derived total for
// one user within some window.
type TypeCounts struct {
	ByType map[MessageType]int
	Total  int
}

// Count returns the count for a single type (zero if absent).
func (c TypeCounts) Count(t MessageType) int {
	return c.ByType[t]
}

// Window is a half-open timestamp window [Start, End). A nil bound
// means unbounded on that side.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// AllTime is the unbounded window.
var AllTime = Window{}

// Since returns a window open-ended on the right.
func Since(start time.Time) Window {
	return Window{Start: &start}
}

// Between returns the half-open window [start, end).
func Between(start, end time.Time) Window {
	return Window{Start: &start, End: &end}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && !t.Before(*w.End) {
		return false
	}
	return true
}

// RankedRow is one leaderboard entry: a user with their score and raw
// message count inside the requested window, joined with display
// identity so presenters never need a second lookup.
type RankedRow struct {
	UserID    UserID
	Username  string
	FirstName string
	LastName  string
	Score     int // weighted experience score over the window
	Count     int // raw message count over the window
}

// DisplayName mirrors User.DisplayName for leaderboard rows.
func (r RankedRow) DisplayName() string {
	name := joinNameParts(r.FirstName, r.LastName)
	if name != "" {
		return name
	}
	if r.Username != "" {
		return r.Username
	}
	return "user"
}

// UserCount is a minimal (user, count) pair used by per-type top
// queries such as the sticker-leader badge check.
type UserCount struct {
	UserID UserID
	Count  int
}

// ChatSummary is the admin view of one chat: activity volume, last
// event time and the weighted score sum across all recorded events.
type ChatSummary struct {
	ChatID   ChatID
	Title    string
	Messages int
	LastAt   time.Time
	Score    int
}

// SortKey selects the leaderboard ordering.
type SortKey string

const (
	// SortByScore orders by the weighted experience score.
	SortByScore SortKey = "score"

	// SortByCount orders by the raw message count.
	SortByCount SortKey = "count"
)
