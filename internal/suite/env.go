package suite

import (
	"context"

	"feedreader/internal/domain"
)

// FeedList отдает список лент приложения. nil означает, что список не задан.
type FeedList interface {
	AllFeeds() []domain.Feed
}

// Menu объединяет кнопку меню и видимость самого меню.
type Menu interface {
	Activate()
	IsHidden() bool
}

// Loader загружает ленту по индексу и вызывает done, когда контейнер
// записей заполнен заново.
type Loader interface {
	LoadFeed(ctx context.Context, index int, done func(error))
}

// ContentRegion описывает контейнер с записями ленты.
type ContentRegion interface {
	EntryCount() int
	Content() (string, error)
}

// Env собирает все, с чем работают проверки.
type Env struct {
	Feeds   FeedList
	Menu    Menu
	Loader  Loader
	Content ContentRegion
}

// EnvFactory создает свежее окружение для каждой проверки.
type EnvFactory func(ctx context.Context) (*Env, error)

// FeedSlice позволяет передать готовый срез как FeedList.
type FeedSlice []domain.Feed

func (s FeedSlice) AllFeeds() []domain.Feed { return s }
