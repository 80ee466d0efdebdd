// Package reader собирает сессию фронтенда: список лент, документ и загрузчик,
// связанные обработчиками кликов так же, как в браузерном приложении.
package reader

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"feedreader/internal/domain"
	"feedreader/internal/page"
	"feedreader/internal/suite"
	"feedreader/internal/usecase"

	"github.com/PuerkitoBio/goquery"
)

// FeedLoader асинхронно загружает ленту в представление.
type FeedLoader interface {
	Feeds() []domain.Feed
	LoadFeed(ctx context.Context, id int, view usecase.FeedView, done func(error))
}

// Reader представляет одну сессию ридера.
type Reader struct {
	loader FeedLoader
	page   *page.Page
	log    *slog.Logger
	ctx    context.Context
}

// New создает сессию и привязывает обработчики: клик по иконке меню переключает
// меню, клик по ленте в меню скрывает меню и загружает ленту.
func New(ctx context.Context, loader FeedLoader, log *slog.Logger) (*Reader, error) {
	p, err := page.New(loader.Feeds())
	if err != nil {
		return nil, err
	}
	r := &Reader{
		loader: loader,
		page:   p,
		log:    log.With(slog.String("component", "reader")),
		ctx:    ctx,
	}
	p.On(page.SelectorMenuIcon, func(*goquery.Selection) {
		p.ToggleMenu()
	})
	p.On(page.SelectorFeedList+" a", func(s *goquery.Selection) {
		raw, _ := s.Attr("data-id")
		id, err := strconv.Atoi(raw)
		if err != nil {
			r.log.Warn("Feed link without numeric data-id", slog.String("data_id", raw))
			return
		}
		p.HideMenu()
		r.LoadFeed(r.ctx, id, nil)
	})
	return r, nil
}

// Init загружает первую ленту, как при открытии страницы.
func (r *Reader) Init(ctx context.Context) error {
	done := make(chan error, 1)
	r.LoadFeed(ctx, 0, func(err error) { done <- err })
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reader) Page() *page.Page { return r.page }

func (r *Reader) AllFeeds() []domain.Feed { return r.loader.Feeds() }

// Activate имитирует клик по иконке меню.
func (r *Reader) Activate() {
	if _, err := r.page.Click(page.SelectorMenuIcon); err != nil {
		r.log.Error("Menu icon click failed", slog.Any("error", err))
	}
}

func (r *Reader) IsHidden() bool { return r.page.MenuHidden() }

// LoadFeed загружает ленту id в документ и вызывает done по завершении.
func (r *Reader) LoadFeed(ctx context.Context, id int, done func(error)) {
	r.loader.LoadFeed(ctx, id, r.page, done)
}

// SelectFeed имитирует клик по ленте в меню. Загрузка идет асинхронно.
func (r *Reader) SelectFeed(id int) error {
	_, err := r.page.Click(fmt.Sprintf(`%s a[data-id="%d"]`, page.SelectorFeedList, id))
	return err
}

// HTML сериализует документ сессии.
func (r *Reader) HTML(pretty bool) (string, error) { return r.page.HTML(pretty) }

func (r *Reader) EntryCount() int { return r.page.EntryCount() }

func (r *Reader) Content() (string, error) { return r.page.FeedHTML() }

// Env представляет сессию как окружение для проверок.
func (r *Reader) Env() *suite.Env {
	return &suite.Env{Feeds: r, Menu: r, Loader: r, Content: r}
}

// EnvFactory выдает новую сессию на каждую проверку.
func EnvFactory(loader FeedLoader, log *slog.Logger) suite.EnvFactory {
	return func(ctx context.Context) (*suite.Env, error) {
		r, err := New(ctx, loader, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open reader session: %w", err)
		}
		return r.Env(), nil
	}
}
