package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"feedreader/internal/metrics"

	"golang.org/x/sync/errgroup"
)

// FeedProcessor обрабатывает одну ленту.
type FeedProcessor interface {
	ProcessFeed(ctx context.Context, url string) error
}

// Worker периодически обновляет хранилище из всех лент.
// Одновременно обрабатывается не больше concurrency лент.
type Worker struct {
	processor   FeedProcessor
	urls        []string
	interval    time.Duration
	concurrency int
	opTimeout   time.Duration
	log         *slog.Logger
	cancel      context.CancelFunc
	done        sync.WaitGroup
}

func New(processor FeedProcessor, urls []string, interval time.Duration, concurrency int, log *slog.Logger) *Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Worker{
		processor:   processor,
		urls:        urls,
		interval:    interval,
		concurrency: concurrency,
		opTimeout:   30 * time.Second,
		log:         log.With(slog.String("component", "worker")),
	}
}

// Start запускает цикл обработки в отдельной горутине. Первый проход выполняется сразу.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done.Add(1)
	go func() {
		defer w.done.Done()
		w.run(ctx)
	}()
}

// Stop отменяет текущий проход и ждет завершения цикла.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.done.Wait()
}

func (w *Worker) run(ctx context.Context) {
	w.log.Info("Feed processing worker started",
		slog.String("interval", w.interval.String()),
		slog.Int("feed_count", len(w.urls)),
	)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.ProcessAll(ctx)
	for {
		select {
		case <-ticker.C:
			w.ProcessAll(ctx)
		case <-ctx.Done():
			w.log.Info("Worker stopping")
			return
		}
	}
}

// ProcessAll обрабатывает все ленты и возвращает число успешных и неудачных.
func (w *Worker) ProcessAll(ctx context.Context) (succeeded, failed int) {
	start := time.Now()
	w.log.Debug("Feed processing cycle started", slog.Int("feeds_to_process", len(w.urls)))

	var successCount, errorCount atomic.Int64
	var g errgroup.Group
	g.SetLimit(w.concurrency)
	for _, url := range w.urls {
		url := url
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			opCtx, opCancel := context.WithTimeout(ctx, w.opTimeout)
			defer opCancel()
			if err := w.processor.ProcessFeed(opCtx, url); err != nil {
				errorCount.Add(1)
				metrics.FeedsProcessed.WithLabelValues("error").Inc()
				w.log.Error("Feed processing failed", slog.String("url", url), slog.Any("error", err))
				return nil
			}
			successCount.Add(1)
			metrics.FeedsProcessed.WithLabelValues("ok").Inc()
			return nil
		})
	}
	_ = g.Wait()

	w.log.Info("Feed processing cycle completed",
		slog.Int64("successful", successCount.Load()),
		slog.Int64("errors", errorCount.Load()),
		slog.Int("total", len(w.urls)),
		slog.Duration("duration", time.Since(start)),
	)
	return int(successCount.Load()), int(errorCount.Load())
}

func (w *Worker) URLs() []string { return w.urls }

func (w *Worker) Interval() time.Duration { return w.interval }
