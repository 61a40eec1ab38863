package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCondition_Matches(t *testing.T) {
	c := Condition{Metric: MetricTotalMessages, Op: OpAtLeast, Value: 100}

	assert.False(t, c.Matches(99))
	assert.True(t, c.Matches(100))
	assert.True(t, c.Matches(101))
}

func TestCondition_UnknownOperatorNeverMatches(t *testing.T) {
	for _, op := range []Operator{"", "<", "==", ">", "at_least"} {
		c := Condition{Metric: MetricTotalMessages, Op: op, Value: 0}
		assert.False(t, c.Matches(1_000_000), "op=%q", op)
	}
}

func TestMetric_IsRank(t *testing.T) {
	assert.True(t, MetricTopByMessages.IsRank())
	assert.True(t, MetricTopByStickers.IsRank())
	assert.False(t, MetricTotalMessages.IsRank())
	assert.False(t, MetricStickerCount.IsRank())
	assert.False(t, Metric("bogus").IsRank())
}
