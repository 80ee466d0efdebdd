package suite

import (
	"feedreader/internal/domain"

	"github.com/samber/lo"
)

const (
	GroupFeeds        = "RSS Feeds"
	GroupMenu         = "The menu"
	GroupInitial      = "Initial Entries"
	GroupFeedSelected = "New Feed Selection"
)

// Case описывает одну проверку. Run возвращает ошибку, если проверку не удалось
// довести до утверждений.
type Case struct {
	Name string
	Run  func(t *T) error
}

// Group объединяет проверки с общей подготовкой.
type Group struct {
	Name       string
	BeforeEach func(t *T) error
	Cases      []Case
}

// DefaultGroups возвращает проверки фронтенда ридера в порядке объявления.
func DefaultGroups() []Group {
	return []Group{
		{
			Name: GroupFeeds,
			Cases: []Case{
				{Name: "are defined", Run: checkFeedsDefined},
				{Name: "each feed has a URL", Run: checkEveryFeed(func(f domain.Feed) bool { return f.URL != "" })},
				{Name: "each feed has a name", Run: checkEveryFeed(func(f domain.Feed) bool { return f.Name != "" })},
			},
		},
		{
			Name: GroupMenu,
			Cases: []Case{
				{Name: "is hidden by default", Run: checkMenuHidden},
				{Name: "changes visibility when the menu icon is clicked", Run: checkMenuToggle},
			},
		},
		{
			Name: GroupInitial,
			BeforeEach: func(t *T) error {
				return t.LoadFeed(0)
			},
			Cases: []Case{
				{Name: "has at least a single entry after loadFeed completes", Run: checkHasEntries},
			},
		},
		{
			Name:       GroupFeedSelected,
			BeforeEach: loadTwoFeeds,
			Cases: []Case{
				{Name: "changes content when a new feed is loaded", Run: checkContentChanged},
			},
		},
	}
}

func checkFeedsDefined(t *T) error {
	feeds := t.Env().Feeds.AllFeeds()
	t.Expect(feeds).ToBeDefined()
	t.Expect(len(feeds)).Not().ToBe(0)
	return nil
}

func checkEveryFeed(predicate func(domain.Feed) bool) func(t *T) error {
	return func(t *T) error {
		all := lo.EveryBy(t.Env().Feeds.AllFeeds(), predicate)
		t.Expect(all).ToBeTruthy()
		return nil
	}
}

func checkMenuHidden(t *T) error {
	t.Expect(t.Env().Menu.IsHidden()).ToBe(true)
	return nil
}

func checkMenuToggle(t *T) error {
	menu := t.Env().Menu
	menu.Activate()
	t.Expect(menu.IsHidden()).ToBe(false)
	menu.Activate()
	t.Expect(menu.IsHidden()).ToBe(true)
	return nil
}

func checkHasEntries(t *T) error {
	t.Expect(t.Env().Content.EntryCount()).ToBeTruthy()
	return nil
}

// loadTwoFeeds грузит ленту 0, снимает содержимое и только после этого грузит ленту 1.
func loadTwoFeeds(t *T) error {
	if err := t.LoadFeed(0); err != nil {
		return err
	}
	first, err := t.Env().Content.Content()
	if err != nil {
		return err
	}
	t.Capture("first", first)
	if err := t.LoadFeed(1); err != nil {
		return err
	}
	second, err := t.Env().Content.Content()
	if err != nil {
		return err
	}
	t.Capture("second", second)
	return nil
}

func checkContentChanged(t *T) error {
	t.Expect(t.Captured("second")).Not().ToBe(t.Captured("first"))
	return nil
}
