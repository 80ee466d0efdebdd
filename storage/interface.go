package storage

import (
	"context"

	"feedreader/internal/domain"
)

// Storage определяет общий интерфейс хранилища записей лент.
type Storage interface {
	SaveNews(ctx context.Context, feedURL string, channel *domain.Channel) (int, error)
	GetNews(ctx context.Context, n int) ([]domain.Item, error)
	Close()
}
