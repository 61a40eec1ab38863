package progression

// Metric names an observable quantity a trigger condition is checked
// against. Lifetime metrics are cumulative per-user counts across all
// chats; rank metrics are evaluated against the instantaneous
// today-leaderboard of the chat the triggering message arrived in.
type Metric string

const (
	MetricTotalMessages Metric = "messages"
	MetricTextCount     Metric = "text"
	MetricPhotoCount    Metric = "photo"
	MetricVoiceCount    Metric = "voice"
	MetricStickerCount  Metric = "sticker"

	// MetricTopByMessages is 1 when the user currently leads today's
	// message-count leaderboard of the chat, 0 otherwise.
	MetricTopByMessages Metric = "top_messages"

	// MetricTopByStickers is 1 when the user currently leads today's
	// sticker-count leaderboard of the chat, 0 otherwise.
	MetricTopByStickers Metric = "top_stickers"
)

// IsRank reports whether the metric is a point-in-time leaderboard
// rank rather than a lifetime count.
func (m Metric) IsRank() bool {
	return m == MetricTopByMessages || m == MetricTopByStickers
}

// Operator compares an observed metric value to a threshold.
type Operator string

// OpAtLeast is the only operator with defined semantics. Conditions
// carrying any other operator never match; they are skipped silently
// so a typo in the content file disables a trigger instead of firing
// it spuriously.
const OpAtLeast Operator = ">="

// Condition is a trigger: metric, operator, threshold.
type Condition struct {
	Metric Metric
	Op     Operator
	Value  int
}

// Matches reports whether the observed metric value satisfies the
// condition. Unknown operators never match.
func (c Condition) Matches(observed int) bool {
	if c.Op != OpAtLeast {
		return false
	}
	return observed >= c.Value
}
