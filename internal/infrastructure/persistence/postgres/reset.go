package postgres

import (
	"context"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// STORE RESET
// ══════════════════════════════════════════════════════════════════════════════

// ResetStore implements stats.Resetter: it drops every application
// table and re-runs the migrations, leaving an empty but fully usable
// schema. Any failure here is surfaced as fatal; a half-reset store
// must not go unnoticed.
type ResetStore struct {
	conn *Connection
}

// NewResetStore creates the resetter.
func NewResetStore(conn *Connection) *ResetStore {
	return &ResetStore{conn: conn}
}

// Reset wipes and rebuilds the schema.
func (r *ResetStore) Reset(ctx context.Context) error {
	drop := `
		DROP TABLE IF EXISTS cards CASCADE;
		DROP TABLE IF EXISTS badges CASCADE;
		DROP TABLE IF EXISTS achievements CASCADE;
		DROP TABLE IF EXISTS messages CASCADE;
		DROP TABLE IF EXISTS chats CASCADE;
		DROP TABLE IF EXISTS users CASCADE;
		DROP TABLE IF EXISTS schema_migrations CASCADE;
	`
	if _, err := r.conn.Exec(ctx, drop); err != nil {
		return fmt.Errorf("reset: drop tables: %w", err)
	}

	if err := NewMigrator(r.conn).Migrate(ctx); err != nil {
		return fmt.Errorf("reset: rebuild schema: %w", err)
	}
	return nil
}
