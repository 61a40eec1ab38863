package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/cookie-hub/cookie-growth-bot/internal/domain/progression"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
)

// Content is the loaded game content: the rule catalog plus the
// transport-layer phrase pool.
type Content struct {
	Catalog progression.Catalog
	Phrases []string
}

// contentFile mirrors the TOML layout.
type contentFile struct {
	DailyLimit  int            `mapstructure:"daily_limit"`
	Points      map[string]int `mapstructure:"points"`
	LevelDeltas []int          `mapstructure:"level_deltas"`

	Achievements []definitionEntry `mapstructure:"achievements"`
	Badges       []definitionEntry `mapstructure:"badges"`
	Cards        []cardEntry       `mapstructure:"cards"`

	Phrases struct {
		Replies []string `mapstructure:"replies"`
	} `mapstructure:"phrases"`
}

type definitionEntry struct {
	Key         string         `mapstructure:"key"`
	Title       string         `mapstructure:"title"`
	Emoji       string         `mapstructure:"emoji"`
	Description string         `mapstructure:"description"`
	Condition   conditionEntry `mapstructure:"condition"`
}

type conditionEntry struct {
	Metric string `mapstructure:"metric"`
	Op     string `mapstructure:"op"`
	Value  int    `mapstructure:"value"`
}

type cardEntry struct {
	Key         string `mapstructure:"key"`
	Title       string `mapstructure:"title"`
	Emoji       string `mapstructure:"emoji"`
	Description string `mapstructure:"description"`
	Price       int    `mapstructure:"price"`
}

// LoadContent reads and validates the game content file.
func LoadContent(path string) (Content, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.SetDefault("daily_limit", progression.DefaultDailyLimit)
	v.SetDefault("points", map[string]int{"text": 1})
	v.SetDefault("level_deltas", []int{100, 200, 400, 800, 1600})

	if err := v.ReadInConfig(); err != nil {
		return Content{}, fmt.Errorf("content: read %s: %w", path, err)
	}

	var file contentFile
	if err := v.Unmarshal(&file); err != nil {
		return Content{}, fmt.Errorf("content: parse %s: %w", path, err)
	}
	return buildContent(file)
}

func buildContent(file contentFile) (Content, error) {
	if file.DailyLimit <= 0 {
		return Content{}, fmt.Errorf("content: daily_limit must be positive, got %d", file.DailyLimit)
	}

	points := make(progression.PointTable, len(file.Points))
	for name, value := range file.Points {
		t := stats.MessageType(name)
		if !t.IsValid() {
			return Content{}, fmt.Errorf("content: unknown message type %q in points", name)
		}
		if value < 0 {
			return Content{}, fmt.Errorf("content: negative point value for %q", name)
		}
		points[t] = value
	}

	catalog := progression.Catalog{
		Points:     points,
		DailyLimit: file.DailyLimit,
		Levels:     progression.NewLevelTable(file.LevelDeltas),
	}

	seen := make(map[string]bool)
	for _, e := range file.Achievements {
		if err := checkKey("achievement", e.Key, seen); err != nil {
			return Content{}, err
		}
		catalog.Achievements = append(catalog.Achievements, progression.AchievementDef{
			Key:         e.Key,
			Title:       e.Title,
			Emoji:       e.Emoji,
			Description: e.Description,
			Condition:   toCondition(e.Condition),
		})
	}

	seen = make(map[string]bool)
	for _, e := range file.Badges {
		if err := checkKey("badge", e.Key, seen); err != nil {
			return Content{}, err
		}
		catalog.Badges = append(catalog.Badges, progression.BadgeDef{
			Key:         e.Key,
			Title:       e.Title,
			Emoji:       e.Emoji,
			Description: e.Description,
			Condition:   toCondition(e.Condition),
		})
	}

	seen = make(map[string]bool)
	for _, e := range file.Cards {
		if err := checkKey("card", e.Key, seen); err != nil {
			return Content{}, err
		}
		catalog.Cards = append(catalog.Cards, progression.CardDef{
			Key:         e.Key,
			Title:       e.Title,
			Emoji:       e.Emoji,
			Description: e.Description,
			Price:       e.Price,
		})
	}

	return Content{Catalog: catalog, Phrases: file.Phrases.Replies}, nil
}

func checkKey(kind, key string, seen map[string]bool) error {
	if key == "" {
		return fmt.Errorf("content: %s with empty key", kind)
	}
	if seen[key] {
		return fmt.Errorf("content: duplicate %s key %q", kind, key)
	}
	seen[key] = true
	return nil
}

// toCondition maps the file entry onto a domain condition. Unknown
// metrics and operators pass through: the condition machinery treats
// them as never matching, which disables the trigger without failing
// startup.
func toCondition(e conditionEntry) progression.Condition {
	return progression.Condition{
		Metric: progression.Metric(e.Metric),
		Op:     progression.Operator(e.Op),
		Value:  e.Value,
	}
}
