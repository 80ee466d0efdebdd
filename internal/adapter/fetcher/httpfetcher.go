package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// HTTPFetcher реализует интерфейс FeedFetcher для загрузки лент по HTTP.
// Сетевые ошибки и ответы 5xx повторяются с экспоненциальной задержкой,
// ответы 4xx считаются окончательными.
type HTTPFetcher struct {
	client       *http.Client
	log          *slog.Logger
	retries      uint64
	initialDelay time.Duration
}

type Option func(*HTTPFetcher)

// WithRetries задает число повторов после первой неудачной попытки.
func WithRetries(n int) Option {
	return func(f *HTTPFetcher) {
		if n < 0 {
			n = 0
		}
		f.retries = uint64(n)
	}
}

// WithInitialDelay задает первую задержку между попытками.
func WithInitialDelay(d time.Duration) Option {
	return func(f *HTTPFetcher) { f.initialDelay = d }
}

func WithClient(c *http.Client) Option {
	return func(f *HTTPFetcher) { f.client = c }
}

func NewHTTPFetcher(log *slog.Logger, opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:       http.DefaultClient,
		log:          log,
		initialDelay: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch выполняет GET-запрос и возвращает тело ответа, которое должен закрыть вызывающий.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	log := f.log.With(slog.String("component", "fetcher"), slog.String("url", url))
	log.Debug("Fetching URL")

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = f.initialDelay
	policy.MaxInterval = 5 * time.Second
	policy.MaxElapsedTime = 0

	attempt := 0
	body, err := backoff.RetryWithData(func() (io.ReadCloser, error) {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to create request for url %s: %w", url, err))
		}
		resp, err := f.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(fmt.Errorf("failed to fetch url %s: %w", url, err))
			}
			log.Warn("HTTP request failed", slog.Int("attempt", attempt), slog.Any("error", err))
			return nil, fmt.Errorf("failed to fetch url %s: %w", url, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			statusErr := fmt.Errorf("unexpected status code: %d for url %s", resp.StatusCode, url)
			if resp.StatusCode < http.StatusInternalServerError {
				return nil, backoff.Permanent(statusErr)
			}
			log.Warn("Server error", slog.Int("attempt", attempt), slog.Int("status_code", resp.StatusCode))
			return nil, statusErr
		}
		return resp.Body, nil
	}, backoff.WithContext(backoff.WithMaxRetries(policy, f.retries), ctx))
	if err != nil {
		log.Error("Fetch failed", slog.Int("attempts", attempt), slog.Any("error", err))
		return nil, err
	}
	log.Debug("Successfully fetched URL", slog.Int("attempts", attempt))
	return body, nil
}
