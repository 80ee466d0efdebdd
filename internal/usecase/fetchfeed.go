package usecase

import (
	"context"
	"io"

	"feedreader/internal/domain"
)

// FeedFetcher загружает сырые данные ленты. Возвращенный io.ReadCloser должен быть закрыт.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// FeedParser преобразует сырые данные в доменную модель.
type FeedParser interface {
	Parse(ctx context.Context, reader io.Reader) (*domain.Channel, error)
}

// FeedStorage сохраняет записи ленты и возвращает число новых.
type FeedStorage interface {
	SaveNews(ctx context.Context, feedURL string, channel *domain.Channel) (int, error)
}

// FeedView описывает часть документа, в которую выводится загруженная лента.
type FeedView interface {
	ReplaceFeed(items []domain.Item) error
	SetTitle(title string)
}
