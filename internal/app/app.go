package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"feedreader/internal/adapter/fetcher"
	"feedreader/internal/adapter/parser"
	"feedreader/internal/config"
	"feedreader/internal/migrations"
	"feedreader/internal/reader"
	"feedreader/internal/suite"
	server "feedreader/internal/transport/http"
	"feedreader/internal/usecase"
	"feedreader/internal/worker"
	"feedreader/storage"

	"github.com/jackc/pgx/v5/pgxpool"
)

// App представляет основное приложение Feed Reader.
// Координирует работу HTTP-сервера, воркера обработки лент, сессии ридера
// и хранилища. Обеспечивает graceful startup и shutdown.
type App struct {
	config   *config.Config
	logger   *slog.Logger
	server   *http.Server
	worker   *worker.Worker
	store    storage.Storage
	session  *reader.Reader
	stopChan chan os.Signal
	wg       sync.WaitGroup
}

// OpenStorage открывает хранилище, выбранное в database.driver.
// Для PostgreSQL проверяет соединение и применяет миграции.
func OpenStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Storage, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		log.Info("Using in-memory storage", slog.String("component", "database"))
		return storage.NewMemoryNewsDB(cfg.App.DefaultNewsLimit), nil
	case config.DriverPostgres:
		dbPool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
		log.Info("Database connection established", slog.String("component", "database"))
		if err := migrations.Apply(ctx, log, dbPool); err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
		return storage.NewPostgresNewsDB(dbPool, cfg.App.DefaultNewsLimit, log), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// NewFeedLoader собирает загрузчик лент: fetcher с повторами и парсер.
// store может быть nil, тогда загруженные записи не сохраняются.
func NewFeedLoader(cfg *config.Config, log *slog.Logger, store usecase.FeedStorage) *usecase.FeedLoadingUseCase {
	httpFetcher := fetcher.NewHTTPFetcher(log, fetcher.WithRetries(cfg.App.FetchRetries))
	xmlParser := parser.NewXMLParser(log)
	return usecase.NewFeedLoadingUseCase(cfg.App.FeedList(), httpFetcher, xmlParser, store, log)
}

// New создает и инициализирует приложение: хранилище, сессию ридера с первой
// загруженной лентой, воркер и HTTP-сервер.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	store, err := OpenStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	loader := NewFeedLoader(cfg, log, store)

	session, err := reader.New(context.Background(), loader, log)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create reader session: %w", err)
	}
	initCtx, cancel := context.WithTimeout(ctx, cfg.Check.LoadTimeoutDuration())
	defer cancel()
	if err := session.Init(initCtx); err != nil {
		// Страница остается рабочей и без первой ленты.
		log.Warn("Initial feed load failed",
			slog.String("component", "app"),
			slog.Any("error", err),
		)
	}

	feeds := cfg.App.FeedList()
	urls := make([]string, 0, len(feeds))
	for _, f := range feeds {
		urls = append(urls, f.URL)
	}
	httpFetcher := fetcher.NewHTTPFetcher(log, fetcher.WithRetries(cfg.App.FetchRetries))
	feedProcessor := usecase.NewFeedProcessingUseCase(httpFetcher, parser.NewXMLParser(log), store, log, feeds)
	newsGetter := usecase.NewNewsGetterUseCase(store)

	handler := server.NewHandler(log, newsGetter, session, cfg.App.DefaultNewsLimit)
	router := server.NewServer(log, handler)

	return &App{
		config:   cfg,
		logger:   log,
		server:   &http.Server{Addr: cfg.Server.Address, Handler: router, ReadHeaderTimeout: 10 * time.Second},
		worker:   worker.New(feedProcessor, urls, cfg.App.Interval(), cfg.App.WorkerConcurrency, log),
		store:    store,
		session:  session,
		stopChan: make(chan os.Signal, 1),
	}, nil
}

// Run запускает воркер и HTTP-сервер и блокируется до сигнала завершения
// или падения сервера.
func (a *App) Run() error {
	a.logger.Info("Starting Feed Reader",
		slog.String("component", "app"),
		slog.Int("feed_count", len(a.worker.URLs())),
		slog.String("processing_interval", a.worker.Interval().String()),
		slog.String("storage", a.config.Database.Driver),
	)
	a.worker.Start(context.Background())

	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		a.worker.Stop()
		a.store.Close()
		return fmt.Errorf("failed to create listener: %w", err)
	}
	a.logger.Info("HTTP server ready",
		slog.String("component", "server"),
		slog.String("address", listener.Addr().String()),
	)

	serveErr := make(chan error, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server failed", slog.String("component", "server"), slog.Any("error", err))
			serveErr <- err
		}
	}()

	signal.Notify(a.stopChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(a.stopChan)

	var runErr error
	select {
	case sig := <-a.stopChan:
		a.logger.Info("Shutdown signal received",
			slog.String("component", "app"),
			slog.String("signal", sig.String()),
		)
	case runErr = <-serveErr:
	}
	if err := a.Shutdown(); err != nil {
		return err
	}
	return runErr
}

// Shutdown останавливает воркер, HTTP-сервер и закрывает хранилище.
// На завершение сервера отводится 10 секунд.
func (a *App) Shutdown() error {
	a.logger.Info("Starting graceful shutdown", slog.String("component", "app"))
	if a.worker != nil {
		a.worker.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var shutdownErr error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", slog.String("component", "server"), slog.Any("error", err))
		shutdownErr = err
	}
	if a.store != nil {
		a.store.Close()
	}
	a.wg.Wait()
	a.logger.Info("Application stopped gracefully", slog.String("component", "app"))
	return shutdownErr
}

// RunChecks прогоняет набор проверок фронтенда на живых лентах из конфигурации.
// Каждая проверка получает собственную сессию ридера. Записи не сохраняются.
func RunChecks(ctx context.Context, cfg *config.Config, log *slog.Logger, runCfg suite.Config) *suite.Report {
	if runCfg.LoadTimeout <= 0 {
		runCfg.LoadTimeout = cfg.Check.LoadTimeoutDuration()
	}
	loader := NewFeedLoader(cfg, log, nil)
	runner := suite.NewRunner(reader.EnvFactory(loader, log), runCfg, log)
	return runner.Run(ctx)
}
