// Package progression holds the pure gamification rules: point values
// per message type, the level ladder, trigger conditions, and the
// catalog definitions for achievements, badges and cards. Nothing here
// touches storage or transport.
package progression

import "github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"

// DefaultDailyLimit caps experience earned per user per calendar day
// when the content config does not override it.
const DefaultDailyLimit = 150

// PointTable maps message types to the experience awarded per message.
type PointTable map[stats.MessageType]int

// PointFor returns the award for one message of type t. Unconfigured
// types fall back to the configured text value, and to 1 when even
// text is absent, so no message ever scores zero by omission.
func (p PointTable) PointFor(t stats.MessageType) int {
	if v, ok := p[t]; ok {
		return v
	}
	if v, ok := p[stats.TypeText]; ok {
		return v
	}
	return 1
}

// EarnedToday computes how much experience today's counts are worth:
// the sum of per-type point value times today's count for that type.
// This reconstructs the day's earnings from the event log instead of
// keeping a separate daily counter.
func (p PointTable) EarnedToday(counts stats.TypeCounts) int {
	total := 0
	for t, n := range counts.ByType {
		total += p.PointFor(t) * n
	}
	return total
}

// ClampAward applies the daily cap: the award for one message is the
// per-type point value, reduced to whatever headroom remains under the
// limit. Returns zero once the cap is reached.
func ClampAward(point, earnedToday, dailyLimit int) int {
	remaining := dailyLimit - earnedToday
	if remaining <= 0 {
		return 0
	}
	if point > remaining {
		return remaining
	}
	return point
}
