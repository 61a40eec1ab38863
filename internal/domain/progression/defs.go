package progression

import "time"

// AchievementDef is one achievement in the content catalog. Key is the
// stable identifier unlock records reference; Title and Emoji are
// presentation only and may change without invalidating old unlocks.
type AchievementDef struct {
	Key         string
	Title       string
	Emoji       string
	Description string
	Condition   Condition
}

// BadgeDef is one daily badge in the content catalog. Badge conditions
// are evaluated only on a user's first message of the day in a chat,
// against that moment's today-leaderboard.
type BadgeDef struct {
	Key         string
	Title       string
	Emoji       string
	Description string
	Condition   Condition
}

// CardDef is one purchasable card. Price is in experience points; a
// card with a non-positive price is listed but cannot be bought.
type CardDef struct {
	Key         string
	Title       string
	Emoji       string
	Description string
	Price       int
}

// Catalog bundles the full game content: point values, the daily cap,
// the level ladder, and the achievement/badge/card definitions. It is
// loaded once at startup and passed into handlers as a value; there is
// no global content state.
type Catalog struct {
	Points     PointTable
	DailyLimit int
	Levels     LevelTable

	Achievements []AchievementDef
	Badges       []BadgeDef
	Cards        []CardDef
}

// AchievementByKey returns the definition for a key, if present.
func (c Catalog) AchievementByKey(key string) (AchievementDef, bool) {
	for _, d := range c.Achievements {
		if d.Key == key {
			return d, true
		}
	}
	return AchievementDef{}, false
}

// BadgeByKey returns the definition for a key, if present.
func (c Catalog) BadgeByKey(key string) (BadgeDef, bool) {
	for _, d := range c.Badges {
		if d.Key == key {
			return d, true
		}
	}
	return BadgeDef{}, false
}

// CardByKey returns the definition for a key, if present.
func (c Catalog) CardByKey(key string) (CardDef, bool) {
	for _, d := range c.Cards {
		if d.Key == key {
			return d, true
		}
	}
	return CardDef{}, false
}

// AchievementUnlock records that a user holds an achievement. At most
// one unlock exists per (user, key) pair; the store enforces this.
type AchievementUnlock struct {
	Key        string
	UnlockedAt time.Time
}

// BadgeAward records one earned badge. A user may earn the same badge
// key again on a later day; the store keeps every award.
type BadgeAward struct {
	Key      string
	EarnedAt time.Time
}

// CardHolding is a user's stack of one card key. Each purchase adds a
// unit and each use removes exactly one.
type CardHolding struct {
	Key   string
	Count int
}
