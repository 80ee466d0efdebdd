package reader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"feedreader/internal/adapter/fetcher"
	"feedreader/internal/adapter/parser"
	"feedreader/internal/domain"
	"feedreader/internal/suite"
	"feedreader/internal/usecase"
	"feedreader/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rssBody(title string, n int) string {
	items := ""
	for i := 0; i < n; i++ {
		items += fmt.Sprintf(`<item><title>%s post %d</title><link>https://example.com/%s/%d</link>
<description>&lt;p&gt;About %s %d&lt;/p&gt;</description><pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate></item>`,
			title, i, title, i, title, i)
	}
	return fmt.Sprintf(`<rss version="2.0"><channel><title>%s</title>%s</channel></rss>`, title, items)
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/udacity", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, rssBody("udacity", 3))
	})
	mux.HandleFunc("/csstricks", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, rssBody("csstricks", 2))
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, rssBody("empty", 0))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newLoader(srv *httptest.Server, paths ...string) (*usecase.FeedLoadingUseCase, *storage.MemoryNewsDB) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	feeds := make([]domain.Feed, 0, len(paths))
	for i, p := range paths {
		feeds = append(feeds, domain.Feed{ID: i, Name: "Feed " + p, URL: srv.URL + p})
	}
	store := storage.NewMemoryNewsDB(10)
	return usecase.NewFeedLoadingUseCase(feeds, fetcher.NewHTTPFetcher(log), parser.NewXMLParser(log), store, log), store
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReader_SuitePassesAgainstRealPipeline(t *testing.T) {
	srv := newServer(t)
	loader, store := newLoader(srv, "/udacity", "/csstricks")

	runner := suite.NewRunner(EnvFactory(loader, discardLogger()), suite.Config{LoadTimeout: 5 * time.Second}, discardLogger())
	report := runner.Run(context.Background())

	for _, g := range report.Groups {
		for _, c := range g.Cases {
			assert.Equal(t, suite.Passed, c.Outcome, "%s: %v %v", c.FullName(), c.Err, c.Expectations)
		}
	}
	items, err := store.GetNews(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestReader_SuiteFailsWhenFirstFeedIsEmpty(t *testing.T) {
	srv := newServer(t)
	loader, _ := newLoader(srv, "/empty", "/csstricks")

	report := suite.NewRunner(EnvFactory(loader, discardLogger()), suite.Config{}, discardLogger()).Run(context.Background())
	for _, c := range report.Groups[2].Cases {
		assert.Equal(t, suite.Failed, c.Outcome)
	}
}

func TestReader_SuiteErrorsWhenSecondFeedMissing(t *testing.T) {
	srv := newServer(t)
	loader, _ := newLoader(srv, "/udacity")

	report := suite.NewRunner(EnvFactory(loader, discardLogger()), suite.Config{}, discardLogger()).Run(context.Background())
	res := report.Groups[3].Cases[0]
	assert.Equal(t, suite.Errored, res.Outcome)
	assert.ErrorIs(t, res.Err, usecase.ErrFeedNotFound)
}

func TestReader_MenuAndSelection(t *testing.T) {
	srv := newServer(t)
	loader, _ := newLoader(srv, "/udacity", "/csstricks")
	r, err := New(context.Background(), loader, discardLogger())
	require.NoError(t, err)

	assert.True(t, r.IsHidden())
	r.Activate()
	assert.False(t, r.IsHidden())

	require.NoError(t, r.SelectFeed(1))
	assert.True(t, r.IsHidden())
	assert.Eventually(t, func() bool {
		return r.EntryCount() == 2 && r.Page().Title() == "Feed /csstricks"
	}, 2*time.Second, 10*time.Millisecond)

	assert.Error(t, r.SelectFeed(9))
}

func TestReader_Init(t *testing.T) {
	srv := newServer(t)
	loader, _ := newLoader(srv, "/udacity", "/csstricks")
	r, err := New(context.Background(), loader, discardLogger())
	require.NoError(t, err)

	require.NoError(t, r.Init(context.Background()))
	assert.Equal(t, 3, r.EntryCount())
	content, err := r.Content()
	require.NoError(t, err)
	assert.Contains(t, content, "About udacity 0")
	assert.Equal(t, []domain.Feed{
		{ID: 0, Name: "Feed /udacity", URL: srv.URL + "/udacity"},
		{ID: 1, Name: "Feed /csstricks", URL: srv.URL + "/csstricks"},
	}, r.AllFeeds())
}
