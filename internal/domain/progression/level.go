package progression

// LevelTable is the level ladder, built from a list of experience
// deltas. Delta i is the additional experience needed to go from level
// i+1 to level i+2; absolute thresholds are the prefix sums. A user
// with experience below the first threshold is level 1, and the
// terminal level is len(deltas)+1.
type LevelTable struct {
	thresholds []int // absolute cumulative thresholds, ascending
}

// NewLevelTable builds the ladder from per-level deltas. Non-positive
// deltas are skipped so the thresholds stay strictly ascending.
func NewLevelTable(deltas []int) LevelTable {
	thresholds := make([]int, 0, len(deltas))
	sum := 0
	for _, d := range deltas {
		if d <= 0 {
			continue
		}
		sum += d
		thresholds = append(thresholds, sum)
	}
	return LevelTable{thresholds: thresholds}
}

// LevelFor returns the level for a total experience value: one plus
// the number of thresholds at or below it.
func (t LevelTable) LevelFor(exp int) int {
	level := 1
	for _, th := range t.thresholds {
		if exp < th {
			break
		}
		level++
	}
	return level
}

// NextThreshold returns the absolute experience needed for the next
// level after the given one, and false when the level is terminal.
func (t LevelTable) NextThreshold(level int) (int, bool) {
	if level < 1 || level > len(t.thresholds) {
		return 0, false
	}
	return t.thresholds[level-1], true
}

// MaxLevel returns the terminal level of the ladder.
func (t LevelTable) MaxLevel() int {
	return len(t.thresholds) + 1
}
