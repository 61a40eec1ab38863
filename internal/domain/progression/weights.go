package progression

import "github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"

// ScoreWeights is the fixed weighting the leaderboard score uses:
// media messages count more than plain text. It is deliberately
// independent of the configurable point table, so rebalancing earnable
// experience never reshuffles historical leaderboards.
var ScoreWeights = map[stats.MessageType]int{
	stats.TypePhoto:   3,
	stats.TypeVoice:   3,
	stats.TypeSticker: 2,
}

// DefaultScoreWeight applies to every type absent from ScoreWeights.
const DefaultScoreWeight = 1

// WeightFor returns the leaderboard weight for a message type.
func WeightFor(t stats.MessageType) int {
	if w, ok := ScoreWeights[t]; ok {
		return w
	}
	return DefaultScoreWeight
}

// WeightedScore computes the leaderboard score for a set of per-type
// counts.
func WeightedScore(counts stats.TypeCounts) int {
	score := 0
	for t, n := range counts.ByType {
		score += WeightFor(t) * n
	}
	return score
}
