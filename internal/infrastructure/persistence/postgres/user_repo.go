package postgres

import (
	"context"
	"fmt"

	"github.com/cookie-hub/cookie-growth-bot/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// UserRepo implements stats.UserRepository on PostgreSQL.
type UserRepo struct {
	conn *Connection
}

// NewUserRepo creates the repository.
func NewUserRepo(conn *Connection) *UserRepo {
	return &UserRepo{conn: conn}
}

// Upsert creates the user or refreshes identity fields. Experience and
// level are left alone on conflict.
func (r *UserRepo) Upsert(ctx context.Context, id stats.UserID, username, firstName, lastName string) error {
	query := `
		INSERT INTO users (user_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			updated_at = NOW()
	`
	if _, err := r.conn.Exec(ctx, query, int64(id), username, firstName, lastName); err != nil {
		return fmt.Errorf("%w: upsert user: %v", stats.ErrStorageUnavailable, err)
	}
	return nil
}

// GetByID returns the user or stats.ErrUserNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id stats.UserID) (*stats.User, error) {
	query := `
		SELECT user_id, username, first_name, last_name, total_exp, level
		FROM users
		WHERE user_id = $1
	`
	var u stats.User
	err := r.conn.QueryRow(ctx, query, int64(id)).Scan(
		&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.TotalExperience, &u.Level,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, stats.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: get user: %v", stats.ErrStorageUnavailable, err)
	}
	return &u, nil
}

// AddExperience atomically adjusts the balance and returns the new total.
func (r *UserRepo) AddExperience(ctx context.Context, id stats.UserID, delta int) (int, error) {
	query := `
		UPDATE users
		SET total_exp = total_exp + $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING total_exp
	`
	var total int
	err := r.conn.QueryRow(ctx, query, int64(id), delta).Scan(&total)
	if err != nil {
		if IsNoRows(err) {
			return 0, stats.ErrUserNotFound
		}
		return 0, fmt.Errorf("%w: add experience: %v", stats.ErrStorageUnavailable, err)
	}
	return total, nil
}

// SetExperience overwrites the balance.
func (r *UserRepo) SetExperience(ctx context.Context, id stats.UserID, value int) error {
	tag, err := r.conn.Exec(ctx,
		`UPDATE users SET total_exp = $2, updated_at = NOW() WHERE user_id = $1`,
		int64(id), value)
	if err != nil {
		return fmt.Errorf("%w: set experience: %v", stats.ErrStorageUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return stats.ErrUserNotFound
	}
	return nil
}

// SetLevel overwrites the cached level.
func (r *UserRepo) SetLevel(ctx context.Context, id stats.UserID, level int) error {
	tag, err := r.conn.Exec(ctx,
		`UPDATE users SET level = $2, updated_at = NOW() WHERE user_id = $1`,
		int64(id), level)
	if err != nil {
		return fmt.Errorf("%w: set level: %v", stats.ErrStorageUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return stats.ErrUserNotFound
	}
	return nil
}

// Delete removes the user; events and awards cascade.
func (r *UserRepo) Delete(ctx context.Context, id stats.UserID) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("%w: delete user: %v", stats.ErrStorageUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return stats.ErrUserNotFound
	}
	return nil
}

// ListAll returns every user ordered by ID.
func (r *UserRepo) ListAll(ctx context.Context) ([]stats.User, error) {
	query := `
		SELECT user_id, username, first_name, last_name, total_exp, level
		FROM users
		ORDER BY user_id
	`
	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %v", stats.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var users []stats.User
	for rows.Next() {
		var u stats.User
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.TotalExperience, &u.Level); err != nil {
			return nil, fmt.Errorf("%w: scan user: %v", stats.ErrStorageUnavailable, err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// CHAT REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// ChatRepo implements stats.ChatRepository on PostgreSQL.
type ChatRepo struct {
	conn *Connection
}

// NewChatRepo creates the repository.
func NewChatRepo(conn *Connection) *ChatRepo {
	return &ChatRepo{conn: conn}
}

// Upsert creates the chat or refreshes its title (last write wins).
func (r *ChatRepo) Upsert(ctx context.Context, id stats.ChatID, title string) error {
	query := `
		INSERT INTO chats (chat_id, title)
		VALUES ($1, $2)
		ON CONFLICT (chat_id) DO UPDATE SET
			title = EXCLUDED.title,
			updated_at = NOW()
	`
	if _, err := r.conn.Exec(ctx, query, int64(id), title); err != nil {
		return fmt.Errorf("%w: upsert chat: %v", stats.ErrStorageUnavailable, err)
	}
	return nil
}

// GetByID returns the chat or stats.ErrChatNotFound.
func (r *ChatRepo) GetByID(ctx context.Context, id stats.ChatID) (*stats.Chat, error) {
	var c stats.Chat
	err := r.conn.QueryRow(ctx,
		`SELECT chat_id, title FROM chats WHERE chat_id = $1`, int64(id),
	).Scan(&c.ID, &c.Title)
	if err != nil {
		if IsNoRows(err) {
			return nil, stats.ErrChatNotFound
		}
		return nil, fmt.Errorf("%w: get chat: %v", stats.ErrStorageUnavailable, err)
	}
	return &c, nil
}

// ListAll returns every chat ordered by ID.
func (r *ChatRepo) ListAll(ctx context.Context) ([]stats.Chat, error) {
	rows, err := r.conn.Query(ctx, `SELECT chat_id, title FROM chats ORDER BY chat_id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list chats: %v", stats.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var chats []stats.Chat
	for rows.Next() {
		var c stats.Chat
		if err := rows.Scan(&c.ID, &c.Title); err != nil {
			return nil, fmt.Errorf("%w: scan chat: %v", stats.ErrStorageUnavailable, err)
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}
