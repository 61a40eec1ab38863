package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/cookie-hub/cookie-growth-bot/internal/domain/progression"
	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// EVENT REPOSITORY
// The append-only message log plus every aggregation query derived from
// it: per-user counts, leaderboards, report totals.
// ══════════════════════════════════════════════════════════════════════════════

// EventRepo implements stats.EventRepository on PostgreSQL.
type EventRepo struct {
	conn *Connection
}

// NewEventRepo creates the repository.
func NewEventRepo(conn *Connection) *EventRepo {
	return &EventRepo{conn: conn}
}

// Append records one immutable event.
func (r *EventRepo) Append(ctx context.Context, ev stats.MessageEvent) error {
	query := `
		INSERT INTO messages (user_id, chat_id, message_type, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.conn.Exec(ctx, query, int64(ev.UserID), int64(ev.ChatID), string(ev.Type), ev.At)
	if err != nil {
		return fmt.Errorf("%w: append event: %v", stats.ErrStorageUnavailable, err)
	}
	return nil
}

// CountsByUser returns grouped per-type counts across all chats.
func (r *EventRepo) CountsByUser(ctx context.Context, userID stats.UserID, w stats.Window) (stats.TypeCounts, error) {
	counts := stats.TypeCounts{ByType: make(map[stats.MessageType]int)}

	var sb strings.Builder
	args := []interface{}{int64(userID)}
	sb.WriteString(`SELECT message_type, COUNT(*) FROM messages WHERE user_id = $1`)
	args = appendWindow(&sb, args, w)
	sb.WriteString(` GROUP BY message_type`)

	rows, err := r.conn.Query(ctx, sb.String(), args...)
	if err != nil {
		return counts, fmt.Errorf("%w: counts by user: %v", stats.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return counts, fmt.Errorf("%w: scan counts: %v", stats.ErrStorageUnavailable, err)
		}
		counts.ByType[stats.MessageType(t)] = n
		counts.Total += n
	}
	return counts, rows.Err()
}

// CountByUserInChat returns one user's event count in one chat.
func (r *EventRepo) CountByUserInChat(ctx context.Context, userID stats.UserID, chatID stats.ChatID, w stats.Window) (int, error) {
	var sb strings.Builder
	args := []interface{}{int64(userID), int64(chatID)}
	sb.WriteString(`SELECT COUNT(*) FROM messages WHERE user_id = $1 AND chat_id = $2`)
	args = appendWindow(&sb, args, w)

	var n int
	if err := r.conn.QueryRow(ctx, sb.String(), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count in chat: %v", stats.ErrStorageUnavailable, err)
	}
	return n, nil
}

// Leaderboard ranks a chat's users inside the window. Ties on the sort
// key fall back to whoever posted earliest in the window (MIN(m.id),
// insertion order), so repeated queries return a stable order.
func (r *EventRepo) Leaderboard(ctx context.Context, chatID stats.ChatID, w stats.Window, key stats.SortKey, limit int) ([]stats.RankedRow, error) {
	orderCol := "score"
	if key == stats.SortByCount {
		orderCol = "cnt"
	}

	var sb strings.Builder
	args := []interface{}{int64(chatID)}
	fmt.Fprintf(&sb, `
		SELECT m.user_id, u.username, u.first_name, u.last_name,
		       SUM(%s) AS score,
		       COUNT(*) AS cnt
		FROM messages m
		JOIN users u ON u.user_id = m.user_id
		WHERE m.chat_id = $1`, scoreCaseSQL())
	args = appendWindowCol(&sb, args, w, "m.created_at")
	fmt.Fprintf(&sb, `
		GROUP BY m.user_id, u.username, u.first_name, u.last_name
		ORDER BY %s DESC, MIN(m.id) ASC`, orderCol)
	if limit > 0 {
		args = append(args, limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, err := r.conn.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: leaderboard: %v", stats.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var result []stats.RankedRow
	for rows.Next() {
		var row stats.RankedRow
		if err := rows.Scan(&row.UserID, &row.Username, &row.FirstName, &row.LastName, &row.Score, &row.Count); err != nil {
			return nil, fmt.Errorf("%w: scan leaderboard row: %v", stats.ErrStorageUnavailable, err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// TopByType ranks users by count of one type; empty type counts all.
func (r *EventRepo) TopByType(ctx context.Context, chatID stats.ChatID, t stats.MessageType, w stats.Window, limit int) ([]stats.UserCount, error) {
	var sb strings.Builder
	args := []interface{}{int64(chatID)}
	sb.WriteString(`SELECT user_id, COUNT(*) AS cnt FROM messages WHERE chat_id = $1`)
	if t != "" {
		args = append(args, string(t))
		fmt.Fprintf(&sb, " AND message_type = $%d", len(args))
	}
	args = appendWindow(&sb, args, w)
	sb.WriteString(` GROUP BY user_id ORDER BY cnt DESC, MIN(id) ASC`)
	if limit > 0 {
		args = append(args, limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, err := r.conn.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: top by type: %v", stats.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var result []stats.UserCount
	for rows.Next() {
		var uc stats.UserCount
		if err := rows.Scan(&uc.UserID, &uc.Count); err != nil {
			return nil, fmt.Errorf("%w: scan top row: %v", stats.ErrStorageUnavailable, err)
		}
		result = append(result, uc)
	}
	return result, rows.Err()
}

// TotalMessages counts all events in the window across chats.
func (r *EventRepo) TotalMessages(ctx context.Context, w stats.Window) (int, error) {
	var sb strings.Builder
	var args []interface{}
	sb.WriteString(`SELECT COUNT(*) FROM messages WHERE TRUE`)
	args = appendWindow(&sb, args, w)

	var n int
	if err := r.conn.QueryRow(ctx, sb.String(), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: total messages: %v", stats.ErrStorageUnavailable, err)
	}
	return n, nil
}

// ActiveChats returns chats with at least one event in the window.
func (r *EventRepo) ActiveChats(ctx context.Context, w stats.Window) ([]stats.ChatID, error) {
	var sb strings.Builder
	var args []interface{}
	sb.WriteString(`SELECT DISTINCT chat_id FROM messages WHERE TRUE`)
	args = appendWindow(&sb, args, w)
	sb.WriteString(` ORDER BY chat_id`)

	rows, err := r.conn.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: active chats: %v", stats.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var ids []stats.ChatID
	for rows.Next() {
		var id stats.ChatID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scan chat id: %v", stats.ErrStorageUnavailable, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ChatSummaries returns per-chat lifetime activity for the admin view.
func (r *EventRepo) ChatSummaries(ctx context.Context) ([]stats.ChatSummary, error) {
	query := fmt.Sprintf(`
		SELECT m.chat_id, COALESCE(c.title, ''), COUNT(*), MAX(m.created_at), SUM(%s)
		FROM messages m
		LEFT JOIN chats c ON c.chat_id = m.chat_id
		GROUP BY m.chat_id, c.title
		ORDER BY COUNT(*) DESC
	`, scoreCaseSQL())

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: chat summaries: %v", stats.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var result []stats.ChatSummary
	for rows.Next() {
		var s stats.ChatSummary
		if err := rows.Scan(&s.ChatID, &s.Title, &s.Messages, &s.LastAt, &s.Score); err != nil {
			return nil, fmt.Errorf("%w: scan chat summary: %v", stats.ErrStorageUnavailable, err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// scoreCaseSQL renders the fixed leaderboard weight table as a SQL CASE
// so ranking happens in one aggregate pass. Weights come from the same
// constant the in-process scorer uses.
func scoreCaseSQL() string {
	var b strings.Builder
	b.WriteString("CASE m.message_type")
	for _, t := range stats.AllMessageTypes {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", t, progression.WeightFor(t))
	}
	fmt.Fprintf(&b, " ELSE %d END", progression.DefaultScoreWeight)
	return b.String()
}

// appendWindow adds half-open window bounds on created_at.
func appendWindow(sb *strings.Builder, args []interface{}, w stats.Window) []interface{} {
	return appendWindowCol(sb, args, w, "created_at")
}

func appendWindowCol(sb *strings.Builder, args []interface{}, w stats.Window, col string) []interface{} {
	if w.Start != nil {
		args = append(args, *w.Start)
		fmt.Fprintf(sb, " AND %s >= $%d", col, len(args))
	}
	if w.End != nil {
		args = append(args, *w.End)
		fmt.Fprintf(sb, " AND %s < $%d", col, len(args))
	}
	return args
}
