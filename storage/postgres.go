package storage

import (
	"context"
	"fmt"
	"log/slog"

	"feedreader/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresNewsDB struct {
	pool             *pgxpool.Pool
	log              *slog.Logger
	defaultNewsLimit int
}

func NewPostgresNewsDB(pool *pgxpool.Pool, defaultNewsLimit int, log *slog.Logger) *PostgresNewsDB {
	log.Info("Initializing Postgres news storage", slog.String("component", "storage"))
	return &PostgresNewsDB{
		pool:             pool,
		log:              log.With(slog.String("component", "storage")),
		defaultNewsLimit: defaultNewsLimit,
	}
}

func (db *PostgresNewsDB) Close() {
	db.log.Info("Closing database connection pool")
	db.pool.Close()
}

// SaveNews вставляет записи ленты одним батчем в транзакции.
// Записи с уже известной ссылкой пропускаются.
func (db *PostgresNewsDB) SaveNews(ctx context.Context, feedURL string, channel *domain.Channel) (saved int, err error) {
	const op = "storage.postgres.SaveNews"
	if len(channel.Items) == 0 {
		return 0, nil
	}
	log := db.log.With(slog.String("op", op), slog.String("url", feedURL))
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(context.Background()); rollbackErr != nil {
				log.Error("Failed to rollback transaction", slog.Any("error", rollbackErr))
			}
		}
	}()
	batch := &pgx.Batch{}
	query := `
	INSERT INTO news (title, content, snippet, pub_date, link, feed_url)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (link) DO NOTHING;
	`
	for _, item := range channel.Items {
		batch.Queue(query, item.Title, item.Description, item.Snippet, item.PubDate, item.Link, feedURL)
	}
	results := tx.SendBatch(ctx, batch)
	for range channel.Items {
		tag, execErr := results.Exec()
		if execErr != nil {
			results.Close()
			err = execErr
			log.Error("Failed to execute batch", slog.Any("error", err))
			return 0, fmt.Errorf("%s: failed to execute batch: %w", op, err)
		}
		saved += int(tag.RowsAffected())
	}
	if err = results.Close(); err != nil {
		log.Error("Failed to close batch", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to close batch: %w", op, err)
	}
	if err = tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return saved, nil
}

// GetNews возвращает n последних записей; n <= 0 означает лимит по умолчанию.
func (db *PostgresNewsDB) GetNews(ctx context.Context, n int) ([]domain.Item, error) {
	const op = "storage.postgres.GetNews"
	limit := n
	if limit <= 0 {
		limit = db.defaultNewsLimit
	}
	log := db.log.With(slog.String("op", op), slog.Int("limit", limit))
	query := `
	SELECT title, content, snippet, pub_date, link, feed_url
	FROM news
	ORDER BY pub_date DESC
	LIMIT $1;
	`
	rows, err := db.pool.Query(ctx, query, limit)
	if err != nil {
		log.Error("Database query failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	defer rows.Close()
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Item, error) {
		var item domain.Item
		err := row.Scan(
			&item.Title,
			&item.Description,
			&item.Snippet,
			&item.PubDate,
			&item.Link,
			&item.FeedURL,
		)
		return item, err
	})
	if err != nil {
		log.Error("Failed to collect rows", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to scan row: %w", op, err)
	}
	log.Debug("Successfully retrieved news items", slog.Int("count", len(items)))
	return items, nil
}
