package migrations

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Migration struct {
	ID    string
	UpSQL string
}

var allMigrations = []Migration{
	{
		ID: "20231120120000_create_news_table",
		UpSQL: `
		CREATE TABLE news(
		id serial PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		pub_date TIMESTAMPTZ NOT NULL,
		link TEXT UNIQUE NOT NULL
		);`,
	},
	{
		ID: "20240305090000_add_feed_columns",
		UpSQL: `
		ALTER TABLE news
		ADD COLUMN snippet TEXT NOT NULL DEFAULT '',
		ADD COLUMN feed_url TEXT NOT NULL DEFAULT '';
		CREATE INDEX news_pub_date_idx ON news (pub_date DESC);`,
	},
}

// Pending возвращает миграции, которых нет среди applied, в порядке ID.
func Pending(applied map[string]bool) []Migration {
	ordered := make([]Migration, len(allMigrations))
	copy(ordered, allMigrations)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ID < ordered[j].ID
	})
	pending := make([]Migration, 0, len(ordered))
	for _, m := range ordered {
		if !applied[m.ID] {
			pending = append(pending, m)
		}
	}
	return pending
}

// Apply применяет недостающие миграции в одной транзакции.
func Apply(ctx context.Context, log *slog.Logger, pool *pgxpool.Pool) error {
	log = log.With(slog.String("component", "migrations"))
	log.Info("Starting database migrations check")
	_, err := pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
	id TEXT PRIMARY KEY
	);
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	rows, err := pool.Query(ctx, "SELECT id FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}
	applied := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan migration id: %w", err)
		}
		applied[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}

	pending := Pending(applied)
	if len(pending) == 0 {
		log.Info("Database is up to date, no new migrations found")
		return nil
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)
	for _, m := range pending {
		log.Info("Applying migration", slog.String("id", m.ID))
		if _, err := tx.Exec(ctx, m.UpSQL); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (id) VALUES ($1)", m.ID); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migrations transaction: %w", err)
	}
	log.Info("Database migrations applied successfully", slog.Int("count", len(pending)))
	return nil
}
