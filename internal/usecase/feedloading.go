package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"feedreader/internal/domain"
	"feedreader/internal/metrics"
)

// ErrFeedNotFound возвращается при загрузке ленты с неизвестным индексом.
var ErrFeedNotFound = errors.New("feed not found")

// FeedLoadingUseCase реализует loadFeed фронтенда: получает ленту по индексу,
// выводит ее записи в документ и сохраняет их в хранилище.
type FeedLoadingUseCase struct {
	feeds   []domain.Feed
	fetcher FeedFetcher
	parser  FeedParser
	storage FeedStorage
	log     *slog.Logger
}

// NewFeedLoadingUseCase создает загрузчик. storage может быть nil.
func NewFeedLoadingUseCase(
	feeds []domain.Feed,
	fetcher FeedFetcher,
	parser FeedParser,
	storage FeedStorage,
	log *slog.Logger,
) *FeedLoadingUseCase {
	return &FeedLoadingUseCase{
		feeds:   feeds,
		fetcher: fetcher,
		parser:  parser,
		storage: storage,
		log:     log.With(slog.String("component", "loader")),
	}
}

// Feeds возвращает список лент в порядке конфигурации.
func (uc *FeedLoadingUseCase) Feeds() []domain.Feed {
	return uc.feeds
}

// LoadFeed запускает загрузку асинхронно и вызывает done ровно один раз,
// когда содержимое view обновлено или загрузка не удалась.
func (uc *FeedLoadingUseCase) LoadFeed(ctx context.Context, id int, view FeedView, done func(error)) {
	var once sync.Once
	finish := func(err error) {
		once.Do(func() {
			if done != nil {
				done(err)
			}
		})
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				finish(fmt.Errorf("load feed %d panicked: %v", id, r))
			}
		}()
		finish(uc.Load(ctx, id, view))
	}()
}

// Load выполняет загрузку синхронно.
func (uc *FeedLoadingUseCase) Load(ctx context.Context, id int, view FeedView) error {
	start := time.Now()
	if id < 0 || id >= len(uc.feeds) {
		metrics.FeedLoads.WithLabelValues("not_found").Inc()
		return fmt.Errorf("%w: id %d of %d", ErrFeedNotFound, id, len(uc.feeds))
	}
	feed := uc.feeds[id]
	log := uc.log.With(slog.String("feed", feed.Name), slog.String("url", feed.URL))

	channel, err := fetchAndParse(ctx, uc.fetcher, uc.parser, feed.URL)
	if err != nil {
		metrics.FeedLoads.WithLabelValues("error").Inc()
		log.Error("Feed load failed", slog.Any("error", err))
		return fmt.Errorf("load %s: %w", feed.Name, err)
	}
	if err := view.ReplaceFeed(channel.Items); err != nil {
		metrics.FeedLoads.WithLabelValues("error").Inc()
		return fmt.Errorf("render %s: %w", feed.Name, err)
	}
	view.SetTitle(feed.Name)

	if uc.storage != nil {
		if _, err := uc.storage.SaveNews(ctx, feed.URL, channel); err != nil {
			log.Warn("Could not store loaded entries", slog.Any("error", err))
		}
	}

	duration := time.Since(start)
	metrics.FeedLoads.WithLabelValues("ok").Inc()
	metrics.FeedLoadDuration.Observe(duration.Seconds())
	log.Info("Feed loaded",
		slog.Int("entries", len(channel.Items)),
		slog.Duration("duration", duration),
	)
	return nil
}
