package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"feedreader/internal/domain"
)

// FeedProcessingUseCase обновляет хранилище: загрузка, разбор и сохранение ленты.
// Используется фоновым воркером.
type FeedProcessingUseCase struct {
	fetcher   FeedFetcher
	parser    FeedParser
	storage   FeedStorage
	log       *slog.Logger
	feedNames map[string]string
}

func NewFeedProcessingUseCase(
	fetcher FeedFetcher,
	parser FeedParser,
	storage FeedStorage,
	log *slog.Logger,
	feeds []domain.Feed,
) *FeedProcessingUseCase {
	names := make(map[string]string, len(feeds))
	for _, f := range feeds {
		names[f.URL] = f.Name
	}
	return &FeedProcessingUseCase{
		fetcher:   fetcher,
		parser:    parser,
		storage:   storage,
		log:       log,
		feedNames: names,
	}
}

// ProcessFeed выполняет полный цикл обработки одной ленты.
// Возвращает ошибку этапа, на котором произошел сбой.
func (uc *FeedProcessingUseCase) ProcessFeed(ctx context.Context, feedURL string) error {
	start := time.Now()
	feedName := uc.feedName(feedURL)
	log := uc.log.With(
		slog.String("component", "feed-processor"),
		slog.String("feed", feedName),
		slog.String("url", feedURL),
	)
	log.Debug("Processing feed started")

	channel, err := fetchAndParse(ctx, uc.fetcher, uc.parser, feedURL)
	if err != nil {
		log.Error("Feed processing failed", slog.Any("error", err))
		return fmt.Errorf("%s: %w", feedName, err)
	}

	savedCount, err := uc.storage.SaveNews(ctx, feedURL, channel)
	if err != nil {
		log.Error("Feed save failed", slog.String("stage", "save"), slog.Any("error", err))
		return fmt.Errorf("save failed for %s: %w", feedName, err)
	}

	log.Info("Feed processing completed",
		slog.Int("items_found", len(channel.Items)),
		slog.Int("items_saved", savedCount),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

// feedName берет имя из конфигурации, иначе хост без www.
func (uc *FeedProcessingUseCase) feedName(feedURL string) string {
	if name, ok := uc.feedNames[feedURL]; ok {
		return name
	}
	if u, err := url.Parse(feedURL); err == nil && u.Host != "" {
		return strings.TrimPrefix(u.Host, "www.")
	}
	return "Unknown"
}

func fetchAndParse(ctx context.Context, fetcher FeedFetcher, parser FeedParser, feedURL string) (*domain.Channel, error) {
	reader, err := fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer reader.Close()
	channel, err := parser.Parse(ctx, reader)
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	return channel, nil
}
