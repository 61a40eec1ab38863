// Package memory is an in-memory implementation of every repository
// interface. It mirrors the PostgreSQL semantics, including the
// leaderboard tie-break on earliest event, and backs the unit tests of
// the engine and the aggregation queries.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cookie-hub/cookie-growth-bot/internal/domain/progression"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
)

type event struct {
	seq int
	stats.MessageEvent
}

type achievementRow struct {
	userID stats.UserID
	key    string
	at     time.Time
}

type badgeRow struct {
	userID stats.UserID
	key    string
	at     time.Time
}

type cardRow struct {
	seq    int
	userID stats.UserID
	key    string
	at     time.Time
}

// Store holds everything behind one mutex. All repository interfaces
// are implemented on the same value, so one Store stands in for the
// whole database.
type Store struct {
	mu sync.Mutex

	users map[stats.UserID]*stats.User
	chats map[stats.ChatID]*stats.Chat

	events       []event
	achievements []achievementRow
	badges       []badgeRow
	cards        []cardRow

	nextSeq int
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.users = make(map[stats.UserID]*stats.User)
	s.chats = make(map[stats.ChatID]*stats.Chat)
	s.events = nil
	s.achievements = nil
	s.badges = nil
	s.cards = nil
	s.nextSeq = 1
}

// Reset implements stats.Resetter.
func (s *Store) Reset(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// stats.UserRepository
// ─────────────────────────────────────────────────────────────────────────────

func (s *Store) Upsert(_ context.Context, id stats.UserID, username, firstName, lastName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		u.Username = username
		u.FirstName = firstName
		u.LastName = lastName
		return nil
	}
	s.users[id] = &stats.User{
		ID:        id,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Level:     1,
	}
	return nil
}

func (s *Store) GetByID(_ context.Context, id stats.UserID) (*stats.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, stats.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *Store) AddExperience(_ context.Context, id stats.UserID, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return 0, stats.ErrUserNotFound
	}
	u.TotalExperience += delta
	return u.TotalExperience, nil
}

func (s *Store) SetExperience(_ context.Context, id stats.UserID, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return stats.ErrUserNotFound
	}
	u.TotalExperience = value
	return nil
}

func (s *Store) SetLevel(_ context.Context, id stats.UserID, level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return stats.ErrUserNotFound
	}
	u.Level = level
	return nil
}

func (s *Store) Delete(_ context.Context, id stats.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return stats.ErrUserNotFound
	}
	delete(s.users, id)

	keepEvents := s.events[:0]
	for _, ev := range s.events {
		if ev.UserID != id {
			keepEvents = append(keepEvents, ev)
		}
	}
	s.events = keepEvents

	keepAch := s.achievements[:0]
	for _, a := range s.achievements {
		if a.userID != id {
			keepAch = append(keepAch, a)
		}
	}
	s.achievements = keepAch

	keepBadges := s.badges[:0]
	for _, b := range s.badges {
		if b.userID != id {
			keepBadges = append(keepBadges, b)
		}
	}
	s.badges = keepBadges

	keepCards := s.cards[:0]
	for _, c := range s.cards {
		if c.userID != id {
			keepCards = append(keepCards, c)
		}
	}
	s.cards = keepCards
	return nil
}

func (s *Store) ListAll(_ context.Context) ([]stats.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]stats.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// stats.ChatRepository
// ─────────────────────────────────────────────────────────────────────────────

// Chats returns a view implementing stats.ChatRepository. Kept as a
// separate accessor because Upsert signatures collide with the user
// repository on the same receiver.
func (s *Store) Chats() stats.ChatRepository {
	return &chatView{s: s}
}

type chatView struct {
	s *Store
}

func (v *chatView) Upsert(_ context.Context, id stats.ChatID, title string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	if c, ok := v.s.chats[id]; ok {
		c.Title = title
		return nil
	}
	v.s.chats[id] = &stats.Chat{ID: id, Title: title}
	return nil
}

func (v *chatView) GetByID(_ context.Context, id stats.ChatID) (*stats.Chat, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	c, ok := v.s.chats[id]
	if !ok {
		return nil, stats.ErrChatNotFound
	}
	copied := *c
	return &copied, nil
}

func (v *chatView) ListAll(_ context.Context) ([]stats.Chat, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	chats := make([]stats.Chat, 0, len(v.s.chats))
	for _, c := range v.s.chats {
		chats = append(chats, *c)
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i].ID < chats[j].ID })
	return chats, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// stats.EventRepository
// ─────────────────────────────────────────────────────────────────────────────

func (s *Store) Append(_ context.Context, ev stats.MessageEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event{seq: s.nextSeq, MessageEvent: ev})
	s.nextSeq++
	return nil
}

func (s *Store) CountsByUser(_ context.Context, userID stats.UserID, w stats.Window) (stats.TypeCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := stats.TypeCounts{ByType: make(map[stats.MessageType]int)}
	for _, ev := range s.events {
		if ev.UserID != userID || !w.Contains(ev.At) {
			continue
		}
		counts.ByType[ev.Type]++
		counts.Total++
	}
	return counts, nil
}

func (s *Store) CountByUserInChat(_ context.Context, userID stats.UserID, chatID stats.ChatID, w stats.Window) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, ev := range s.events {
		if ev.UserID == userID && ev.ChatID == chatID && w.Contains(ev.At) {
			n++
		}
	}
	return n, nil
}

type aggRow struct {
	userID stats.UserID
	score  int
	count  int
	first  int // seq of earliest event in the window
}

func (s *Store) aggregate(chatID stats.ChatID, w stats.Window, filter stats.MessageType) []aggRow {
	byUser := make(map[stats.UserID]*aggRow)
	for _, ev := range s.events {
		if ev.ChatID != chatID || !w.Contains(ev.At) {
			continue
		}
		if filter != "" && ev.Type != filter {
			continue
		}
		row, ok := byUser[ev.UserID]
		if !ok {
			row = &aggRow{userID: ev.UserID, first: ev.seq}
			byUser[ev.UserID] = row
		}
		row.score += progression.WeightFor(ev.Type)
		row.count++
		if ev.seq < row.first {
			row.first = ev.seq
		}
	}

	rows := make([]aggRow, 0, len(byUser))
	for _, r := range byUser {
		rows = append(rows, *r)
	}
	return rows
}

func (s *Store) Leaderboard(_ context.Context, chatID stats.ChatID, w stats.Window, key stats.SortKey, limit int) ([]stats.RankedRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.aggregate(chatID, w, "")
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		av, bv := a.score, b.score
		if key == stats.SortByCount {
			av, bv = a.count, b.count
		}
		if av != bv {
			return av > bv
		}
		return a.first < b.first
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	result := make([]stats.RankedRow, 0, len(rows))
	for _, r := range rows {
		ranked := stats.RankedRow{UserID: r.userID, Score: r.score, Count: r.count}
		if u, ok := s.users[r.userID]; ok {
			ranked.Username = u.Username
			ranked.FirstName = u.FirstName
			ranked.LastName = u.LastName
		}
		result = append(result, ranked)
	}
	return result, nil
}

func (s *Store) TopByType(_ context.Context, chatID stats.ChatID, t stats.MessageType, w stats.Window, limit int) ([]stats.UserCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.aggregate(chatID, w, t)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].first < rows[j].first
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	result := make([]stats.UserCount, 0, len(rows))
	for _, r := range rows {
		result = append(result, stats.UserCount{UserID: r.userID, Count: r.count})
	}
	return result, nil
}

func (s *Store) TotalMessages(_ context.Context, w stats.Window) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, ev := range s.events {
		if w.Contains(ev.At) {
			n++
		}
	}
	return n, nil
}

func (s *Store) ActiveChats(_ context.Context, w stats.Window) ([]stats.ChatID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[stats.ChatID]bool)
	for _, ev := range s.events {
		if w.Contains(ev.At) {
			seen[ev.ChatID] = true
		}
	}
	ids := make([]stats.ChatID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) ChatSummaries(_ context.Context) ([]stats.ChatSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byChat := make(map[stats.ChatID]*stats.ChatSummary)
	for _, ev := range s.events {
		sum, ok := byChat[ev.ChatID]
		if !ok {
			sum = &stats.ChatSummary{ChatID: ev.ChatID}
			if c, exists := s.chats[ev.ChatID]; exists {
				sum.Title = c.Title
			}
			byChat[ev.ChatID] = sum
		}
		sum.Messages++
		sum.Score += progression.WeightFor(ev.Type)
		if ev.At.After(sum.LastAt) {
			sum.LastAt = ev.At
		}
	}

	result := make([]stats.ChatSummary, 0, len(byChat))
	for _, sum := range byChat {
		result = append(result, *sum)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Messages > result[j].Messages })
	return result, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// progression.AchievementRepository
// ─────────────────────────────────────────────────────────────────────────────

func (s *Store) Unlock(_ context.Context, userID stats.UserID, key string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.achievements {
		if a.userID == userID && a.key == key {
			return false, nil
		}
	}
	s.achievements = append(s.achievements, achievementRow{userID: userID, key: key, at: at})
	return true, nil
}

func (s *Store) ListAchievements(_ context.Context, userID stats.UserID) ([]progression.AchievementUnlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var unlocks []progression.AchievementUnlock
	for _, a := range s.achievements {
		if a.userID == userID {
			unlocks = append(unlocks, progression.AchievementUnlock{Key: a.key, UnlockedAt: a.at})
		}
	}
	return unlocks, nil
}

// Achievements returns a view implementing progression.AchievementRepository.
func (s *Store) Achievements() progression.AchievementRepository {
	return achievementView{s: s}
}

type achievementView struct {
	s *Store
}

func (v achievementView) Unlock(ctx context.Context, userID stats.UserID, key string, at time.Time) (bool, error) {
	return v.s.Unlock(ctx, userID, key, at)
}

func (v achievementView) ListByUser(ctx context.Context, userID stats.UserID) ([]progression.AchievementUnlock, error) {
	return v.s.ListAchievements(ctx, userID)
}

// ─────────────────────────────────────────────────────────────────────────────
// progression.BadgeRepository
// ─────────────────────────────────────────────────────────────────────────────

// Badges returns a view implementing progression.BadgeRepository.
func (s *Store) Badges() progression.BadgeRepository {
	return badgeView{s: s}
}

type badgeView struct {
	s *Store
}

func (v badgeView) Award(_ context.Context, userID stats.UserID, key string, at time.Time) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	v.s.badges = append(v.s.badges, badgeRow{userID: userID, key: key, at: at})
	return nil
}

func (v badgeView) ListByUser(_ context.Context, userID stats.UserID) ([]progression.BadgeAward, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var awards []progression.BadgeAward
	for _, b := range v.s.badges {
		if b.userID == userID {
			awards = append(awards, progression.BadgeAward{Key: b.key, EarnedAt: b.at})
		}
	}
	return awards, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// progression.CardRepository
// ─────────────────────────────────────────────────────────────────────────────

// Cards returns a view implementing progression.CardRepository.
func (s *Store) Cards() progression.CardRepository {
	return cardView{s: s}
}

type cardView struct {
	s *Store
}

func (v cardView) Purchase(_ context.Context, userID stats.UserID, key string, price int, at time.Time) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	u, ok := v.s.users[userID]
	if !ok {
		return stats.ErrUserNotFound
	}
	if u.TotalExperience < price {
		return progression.ErrInsufficientExperience
	}
	u.TotalExperience -= price
	v.s.cards = append(v.s.cards, cardRow{seq: v.s.nextSeq, userID: userID, key: key, at: at})
	v.s.nextSeq++
	return nil
}

func (v cardView) Consume(_ context.Context, userID stats.UserID, key string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	oldest := -1
	for i, c := range v.s.cards {
		if c.userID != userID || c.key != key {
			continue
		}
		if oldest < 0 || c.seq < v.s.cards[oldest].seq {
			oldest = i
		}
	}
	if oldest < 0 {
		return progression.ErrCardNotOwned
	}
	v.s.cards = append(v.s.cards[:oldest], v.s.cards[oldest+1:]...)
	return nil
}

func (v cardView) ListByUser(_ context.Context, userID stats.UserID) ([]progression.CardHolding, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	counts := make(map[string]int)
	for _, c := range v.s.cards {
		if c.userID == userID {
			counts[c.key]++
		}
	}
	holdings := make([]progression.CardHolding, 0, len(counts))
	for key, n := range counts {
		holdings = append(holdings, progression.CardHolding{Key: key, Count: n})
	}
	sort.Slice(holdings, func(i, j int) bool {
		if holdings[i].Count != holdings[j].Count {
			return holdings[i].Count > holdings[j].Count
		}
		return holdings[i].Key < holdings[j].Key
	})
	return holdings, nil
}
