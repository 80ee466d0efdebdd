package suite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"feedreader/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMenu struct {
	hidden bool
}

func (m *fakeMenu) Activate()      { m.hidden = !m.hidden }
func (m *fakeMenu) IsHidden() bool { return m.hidden }

// stuckMenu игнорирует клики.
type stuckMenu struct{}

func (stuckMenu) Activate()      {}
func (stuckMenu) IsHidden() bool { return true }

// fakeReader отрисовывает в контейнер entries[index] записей с текстом,
// зависящим от индекса, если sameContent не выставлен.
type fakeReader struct {
	mu          sync.Mutex
	entries     map[int]int
	sameContent bool
	never       bool
	fail        error
	calls       []int
	count       int
	content     string
}

func (f *fakeReader) LoadFeed(ctx context.Context, index int, done func(error)) {
	f.mu.Lock()
	f.calls = append(f.calls, index)
	f.mu.Unlock()
	if f.never {
		return
	}
	go func() {
		if f.fail != nil {
			done(f.fail)
			return
		}
		f.mu.Lock()
		n := f.entries[index]
		f.count = n
		label := fmt.Sprintf("feed-%d", index)
		if f.sameContent {
			label = "feed"
		}
		f.content = strings.Repeat(`<article class="entry">`+label+`</article>`, n)
		f.mu.Unlock()
		done(nil)
		done(nil)
	}()
}

func (f *fakeReader) EntryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

func (f *fakeReader) Content() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.content, nil
}

var goodFeeds = FeedSlice{
	{ID: 0, Name: "Udacity Blog", URL: "http://blog.udacity.com/feed"},
	{ID: 1, Name: "CSS Tricks", URL: "http://feeds.feedburner.com/CssTricks"},
}

type envSetup struct {
	feeds  FeedList
	menu   func() Menu
	reader func() *fakeReader
}

func factoryFor(setup envSetup) EnvFactory {
	return func(ctx context.Context) (*Env, error) {
		env := &Env{Feeds: goodFeeds, Menu: &fakeMenu{hidden: true}}
		if setup.feeds != nil {
			env.Feeds = setup.feeds
		}
		if setup.menu != nil {
			env.Menu = setup.menu()
		}
		reader := &fakeReader{entries: map[int]int{0: 3, 1: 2}}
		if setup.reader != nil {
			reader = setup.reader()
		}
		env.Loader = reader
		env.Content = reader
		return env, nil
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func run(t *testing.T, setup envSetup, cfg Config) *Report {
	t.Helper()
	if cfg.LoadTimeout == 0 {
		cfg.LoadTimeout = time.Second
	}
	return NewRunner(factoryFor(setup), cfg, discardLogger()).Run(context.Background())
}

func findCase(t *testing.T, r *Report, group, name string) CaseResult {
	t.Helper()
	for _, g := range r.Groups {
		if g.Name != group {
			continue
		}
		for _, c := range g.Cases {
			if c.Name == name {
				return c
			}
		}
	}
	t.Fatalf("case %q / %q not found", group, name)
	return CaseResult{}
}

func TestRunner_AllPassAgainstWellBehavedApp(t *testing.T) {
	report := run(t, envSetup{}, Config{})

	require.True(t, report.OK())
	s := report.Summary()
	assert.Equal(t, 7, s.Passed)
	assert.Equal(t, 7, s.Total())
	assert.NotEmpty(t, report.ID)

	var names []string
	for _, g := range report.Groups {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{GroupFeeds, GroupMenu, GroupInitial, GroupFeedSelected}, names)
}

func TestFeedsDefined_FailsOnEmptyOrNilList(t *testing.T) {
	report := run(t, envSetup{feeds: FeedSlice{}}, Config{})
	res := findCase(t, report, GroupFeeds, "are defined")
	assert.Equal(t, Failed, res.Outcome)
	require.Len(t, res.Expectations, 2)
	assert.True(t, res.Expectations[0].Passed)
	assert.False(t, res.Expectations[1].Passed)
	assert.Equal(t, "not.toBe", res.Expectations[1].Matcher)

	report = run(t, envSetup{feeds: FeedSlice(nil)}, Config{})
	res = findCase(t, report, GroupFeeds, "are defined")
	assert.Equal(t, Failed, res.Outcome)
	assert.False(t, res.Expectations[0].Passed)
}

func TestEveryFeed_FailsOnEmptyField(t *testing.T) {
	noURL := FeedSlice{goodFeeds[0], {ID: 1, Name: "Broken"}}
	report := run(t, envSetup{feeds: noURL}, Config{})
	assert.Equal(t, Failed, findCase(t, report, GroupFeeds, "each feed has a URL").Outcome)
	assert.Equal(t, Passed, findCase(t, report, GroupFeeds, "each feed has a name").Outcome)

	noName := FeedSlice{goodFeeds[0], {ID: 1, URL: "http://example.com/rss"}}
	report = run(t, envSetup{feeds: noName}, Config{})
	assert.Equal(t, Passed, findCase(t, report, GroupFeeds, "each feed has a URL").Outcome)
	assert.Equal(t, Failed, findCase(t, report, GroupFeeds, "each feed has a name").Outcome)
}

func TestMenu_HiddenByDefault(t *testing.T) {
	visible := func() Menu { return &fakeMenu{hidden: false} }
	report := run(t, envSetup{menu: visible}, Config{})
	assert.Equal(t, Failed, findCase(t, report, GroupMenu, "is hidden by default").Outcome)
}

func TestMenu_ToggleNeedsTwoActivations(t *testing.T) {
	m := &fakeMenu{hidden: true}
	m.Activate()
	assert.False(t, m.IsHidden())
	m.Activate()
	assert.True(t, m.IsHidden())

	report := run(t, envSetup{menu: func() Menu { return stuckMenu{} }}, Config{})
	res := findCase(t, report, GroupMenu, "changes visibility when the menu icon is clicked")
	assert.Equal(t, Failed, res.Outcome)
	require.Len(t, res.Expectations, 2)
	assert.False(t, res.Expectations[0].Passed)
	assert.True(t, res.Expectations[1].Passed)
}

func TestInitialEntries_FailsWhenNothingRendered(t *testing.T) {
	empty := func() *fakeReader { return &fakeReader{entries: map[int]int{0: 0, 1: 0}} }
	report := run(t, envSetup{reader: empty}, Config{})
	assert.Equal(t, Failed, findCase(t, report, GroupInitial, "has at least a single entry after loadFeed completes").Outcome)

	one := func() *fakeReader { return &fakeReader{entries: map[int]int{0: 1, 1: 1}} }
	report = run(t, envSetup{reader: one}, Config{})
	assert.Equal(t, Passed, findCase(t, report, GroupInitial, "has at least a single entry after loadFeed completes").Outcome)
}

func TestFeedSelection_FailsOnIdenticalContent(t *testing.T) {
	same := func() *fakeReader { return &fakeReader{entries: map[int]int{0: 2, 1: 2}, sameContent: true} }
	report := run(t, envSetup{reader: same}, Config{})
	res := findCase(t, report, GroupFeedSelected, "changes content when a new feed is loaded")
	assert.Equal(t, Failed, res.Outcome)
	assert.Equal(t, "not.toBe", res.Expectations[0].Matcher)
}

func TestFeedSelection_LoadsSequentially(t *testing.T) {
	var last *fakeReader
	setup := envSetup{reader: func() *fakeReader {
		last = &fakeReader{entries: map[int]int{0: 1, 1: 1}}
		return last
	}}
	report := run(t, setup, Config{Groups: []string{GroupFeedSelected}})
	assert.Equal(t, Passed, findCase(t, report, GroupFeedSelected, "changes content when a new feed is loaded").Outcome)
	require.NotNil(t, last)
	assert.Equal(t, []int{0, 1}, last.calls)
}

func TestLoad_TimeoutBecomesError(t *testing.T) {
	stuck := func() *fakeReader { return &fakeReader{never: true} }
	start := time.Now()
	report := run(t, envSetup{reader: stuck}, Config{LoadTimeout: 20 * time.Millisecond})

	assert.Less(t, time.Since(start), 5*time.Second)
	res := findCase(t, report, GroupInitial, "has at least a single entry after loadFeed completes")
	assert.Equal(t, Errored, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrLoadTimeout)
	assert.Equal(t, Errored, findCase(t, report, GroupFeedSelected, "changes content when a new feed is loaded").Outcome)

	assert.Equal(t, Passed, findCase(t, report, GroupFeeds, "are defined").Outcome)
	assert.False(t, report.OK())
}

func TestLoad_ErrorFromLoaderBecomesError(t *testing.T) {
	failing := func() *fakeReader { return &fakeReader{fail: errors.New("feed not found")} }
	report := run(t, envSetup{reader: failing}, Config{})
	res := findCase(t, report, GroupInitial, "has at least a single entry after loadFeed completes")
	assert.Equal(t, Errored, res.Outcome)
	assert.ErrorContains(t, res.Err, "loadFeed(0): feed not found")
}

func TestRunner_PanicIsIsolated(t *testing.T) {
	groups := []Group{{
		Name: "panics",
		Cases: []Case{
			{Name: "boom", Run: func(t *T) error { panic("boom") }},
			{Name: "fine", Run: func(t *T) error { t.Expect(1).ToBe(1); return nil }},
		},
	}}
	report := NewRunner(factoryFor(envSetup{}), Config{}, discardLogger(), WithGroups(groups)).Run(context.Background())
	res := findCase(t, report, "panics", "boom")
	assert.Equal(t, Errored, res.Outcome)
	assert.ErrorContains(t, res.Err, "panic: boom")
	assert.Equal(t, Passed, findCase(t, report, "panics", "fine").Outcome)
}

func TestRunner_FactoryError(t *testing.T) {
	factory := func(ctx context.Context) (*Env, error) { return nil, errors.New("no browser") }
	report := NewRunner(factory, Config{}, discardLogger()).Run(context.Background())
	s := report.Summary()
	assert.Equal(t, 7, s.Errored)
}

func TestRunner_FiltersAndBail(t *testing.T) {
	report := run(t, envSetup{}, Config{NameFilter: "menu"})
	s := report.Summary()
	assert.Equal(t, 2, s.Passed)
	assert.Equal(t, 5, s.Skipped)
	assert.Equal(t, "filtered out", findCase(t, report, GroupFeeds, "are defined").SkipReason)

	report = run(t, envSetup{feeds: FeedSlice{}}, Config{Bail: true})
	s = report.Summary()
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 6, s.Skipped)
	assert.Equal(t, "bail after failure", findCase(t, report, GroupMenu, "is hidden by default").SkipReason)
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := NewRunner(factoryFor(envSetup{}), Config{}, discardLogger()).Run(ctx)
	assert.Equal(t, 7, report.Summary().Skipped)
}

func TestMatchers(t *testing.T) {
	tt := newT(context.Background(), &Env{}, time.Second)

	assert.True(t, tt.Expect([]domain.Feed{}).ToBeDefined())
	assert.False(t, tt.Expect([]domain.Feed(nil)).ToBeDefined())
	assert.False(t, tt.Expect(nil).ToBeDefined())
	assert.True(t, tt.Expect("x").ToBeTruthy())
	assert.False(t, tt.Expect("").ToBeTruthy())
	assert.False(t, tt.Expect(0).ToBeTruthy())
	assert.True(t, tt.Expect(3).ToBeTruthy())
	assert.False(t, tt.Expect(false).ToBeTruthy())
	assert.True(t, tt.Expect(2).Not().ToBe(0))
	assert.False(t, tt.Expect("a").Not().ToBe("a"))
	assert.True(t, tt.failed())

	assert.Equal(t, "expected a not.toBe a", tt.expectations[len(tt.expectations)-1].String())
	assert.Equal(t, "expected <nil> toBeDefined", tt.expectations[2].String())
}
