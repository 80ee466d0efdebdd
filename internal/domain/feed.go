package domain

import "time"

// Feed описывает ленту из конфигурации приложения (запись allFeeds).
// ID совпадает с индексом ленты в списке и используется в data-id ссылок меню.
type Feed struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Item представляет отдельную запись ленты.
type Item struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Description string    `json:"description"`
	Snippet     string    `json:"snippet"`
	PubDate     time.Time `json:"pub_date"`
	FeedURL     string    `json:"feed_url,omitempty"`
}

// Channel представляет разобранную ленту с метаданными и списком записей.
type Channel struct {
	Title       string
	Link        string
	Description string
	Items       []Item
}
