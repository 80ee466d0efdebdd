package page

import (
	"testing"
	"time"

	"feedreader/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFeeds = []domain.Feed{
	{ID: 0, Name: "Udacity Blog", URL: "http://blog.udacity.com/feed"},
	{ID: 1, Name: "CSS Tricks", URL: "http://feeds.feedburner.com/CssTricks"},
}

func TestNew_InitialState(t *testing.T) {
	p, err := New(testFeeds)
	require.NoError(t, err)

	assert.True(t, p.MenuHidden())
	assert.Equal(t, 0, p.EntryCount())
	assert.Equal(t, "Feeds", p.Title())
	assert.Equal(t, []string{"Udacity Blog", "CSS Tricks"}, p.FeedLinks())

	feedHTML, err := p.FeedHTML()
	require.NoError(t, err)
	assert.Empty(t, feedHTML)
}

func TestToggleMenu(t *testing.T) {
	p, err := New(testFeeds)
	require.NoError(t, err)

	p.ToggleMenu()
	assert.False(t, p.MenuHidden())
	p.ToggleMenu()
	assert.True(t, p.MenuHidden())

	p.ToggleMenu()
	p.HideMenu()
	assert.True(t, p.MenuHidden())
}

func TestClick_DispatchesBoundHandlers(t *testing.T) {
	p, err := New(testFeeds)
	require.NoError(t, err)

	p.On(SelectorMenuIcon, func(*goquery.Selection) { p.ToggleMenu() })
	var picked string
	p.On(".feed-list a", func(s *goquery.Selection) { picked, _ = s.Attr("data-id") })

	n, err := p.Click(SelectorMenuIcon)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, p.MenuHidden())

	_, err = p.Click(`.feed-list a[data-id="1"]`)
	require.NoError(t, err)
	assert.Equal(t, "1", picked)

	_, err = p.Click(".does-not-exist")
	assert.ErrorContains(t, err, "no element matches")
}

func TestReplaceFeed(t *testing.T) {
	p, err := New(testFeeds)
	require.NoError(t, err)

	items := []domain.Item{
		{Title: "First <post>", Link: "https://example.com/1", Snippet: "one", PubDate: time.Now()},
		{Title: "Second", Link: "https://example.com/2", Snippet: "two", PubDate: time.Now()},
	}
	require.NoError(t, p.ReplaceFeed(items))
	assert.Equal(t, 2, p.EntryCount())

	first, err := p.FeedHTML()
	require.NoError(t, err)
	assert.Contains(t, first, `<article class="entry">`)
	assert.Contains(t, first, "First &lt;post&gt;")

	require.NoError(t, p.ReplaceFeed(items[1:]))
	assert.Equal(t, 1, p.EntryCount())
	second, err := p.FeedHTML()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	require.NoError(t, p.ReplaceFeed(nil))
	assert.Equal(t, 0, p.EntryCount())
}

func TestSetTitleAndHTML(t *testing.T) {
	p, err := New(testFeeds)
	require.NoError(t, err)

	p.SetTitle("CSS Tricks")
	assert.Equal(t, "CSS Tricks", p.Title())

	raw, err := p.HTML(false)
	require.NoError(t, err)
	assert.Contains(t, raw, `class="menu-hidden"`)

	pretty, err := p.HTML(true)
	require.NoError(t, err)
	assert.Contains(t, pretty, "CSS Tricks")
	assert.Contains(t, pretty, "\n")
}
