// Package page держит HTML-документ ридера в памяти и дает к нему
// DOM-подобный доступ: классы body, клики по элементам, содержимое ленты.
package page

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"feedreader/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/yosssi/gohtml"
)

const (
	ClassMenuHidden  = "menu-hidden"
	SelectorMenuIcon = ".menu-icon-link"
	SelectorFeed     = ".feed"
	SelectorEntry    = ".feed .entry"
	SelectorTitle    = ".header-title"
	SelectorFeedList = ".feed-list"
)

var layout = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Feed Reader</title></head>
<body class="menu-hidden">
<div class="header">
<a class="menu-icon-link" href="#"><i class="icon-list"></i></a>
<h1 class="header-title">Feeds</h1>
</div>
<div class="slide-menu">
<ul class="feed-list">{{range .}}<li><a href="#" data-id="{{.ID}}">{{.Name}}</a></li>{{end}}</ul>
</div>
<div class="feed"></div>
</body>
</html>`))

var entriesTmpl = template.Must(template.New("entries").Parse(
	`{{range .}}<a class="entry-link" href="{{.Link}}"><article class="entry"><h2>{{.Title}}</h2><p>{{.Snippet}}</p></article></a>{{end}}`))

// Handler вызывается при клике по элементу, на который он подписан.
type Handler func(target *goquery.Selection)

type binding struct {
	selector string
	handler  Handler
}

// Page представляет документ одной сессии ридера.
type Page struct {
	mu       sync.RWMutex
	doc      *goquery.Document
	bindings []binding
}

// New строит документ с меню из переданных лент. Меню изначально скрыто.
func New(feeds []domain.Feed) (*Page, error) {
	var buf bytes.Buffer
	if err := layout.Execute(&buf, feeds); err != nil {
		return nil, fmt.Errorf("failed to render page layout: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page layout: %w", err)
	}
	return &Page{doc: doc}, nil
}

// On подписывает обработчик на клики по элементам, подходящим под selector.
func (p *Page) On(selector string, h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bindings = append(p.bindings, binding{selector: selector, handler: h})
}

// Click имитирует клик по первому элементу под selector и возвращает
// количество сработавших обработчиков. Обработчики вызываются без блокировки,
// поэтому могут сами менять документ.
func (p *Page) Click(selector string) (int, error) {
	p.mu.RLock()
	target := p.doc.Find(selector).First()
	if target.Length() == 0 {
		p.mu.RUnlock()
		return 0, fmt.Errorf("no element matches %q", selector)
	}
	var matched []Handler
	for _, b := range p.bindings {
		if target.Is(b.selector) {
			matched = append(matched, b.handler)
		}
	}
	p.mu.RUnlock()

	for _, h := range matched {
		h(target)
	}
	return len(matched), nil
}

// MenuHidden сообщает, есть ли у body класс menu-hidden.
func (p *Page) MenuHidden() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.doc.Find("body").HasClass(ClassMenuHidden)
}

// ToggleMenu переключает класс menu-hidden у body.
func (p *Page) ToggleMenu() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.doc.Find("body").ToggleClass(ClassMenuHidden)
}

// HideMenu добавляет класс menu-hidden, если его нет.
func (p *Page) HideMenu() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.doc.Find("body").AddClass(ClassMenuHidden)
}

// ReplaceFeed заменяет содержимое контейнера .feed разметкой записей.
func (p *Page) ReplaceFeed(items []domain.Item) error {
	var buf bytes.Buffer
	if err := entriesTmpl.Execute(&buf, items); err != nil {
		return fmt.Errorf("failed to render entries: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.doc.Find(SelectorFeed).SetHtml(buf.String())
	return nil
}

func (p *Page) SetTitle(title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.doc.Find(SelectorTitle).SetText(title)
}

func (p *Page) Title() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return strings.TrimSpace(p.doc.Find(SelectorTitle).Text())
}

// EntryCount возвращает число элементов .entry внутри .feed.
func (p *Page) EntryCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.doc.Find(SelectorEntry).Length()
}

// FeedHTML возвращает сериализованное содержимое контейнера .feed.
func (p *Page) FeedHTML() (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.doc.Find(SelectorFeed).Html()
}

// FeedLinks возвращает ленты из меню в порядке следования.
func (p *Page) FeedLinks() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.doc.Find(SelectorFeedList + " a").Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})
}

// HTML сериализует весь документ; pretty форматирует его для чтения.
func (p *Page) HTML(pretty bool) (string, error) {
	p.mu.RLock()
	out, err := p.doc.Html()
	p.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("failed to serialize page: %w", err)
	}
	if pretty {
		return gohtml.Format(out), nil
	}
	return out, nil
}
