package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/techquiz/internal/config"
	"github.com/gokatarajesh/techquiz/internal/logging"
	"github.com/gokatarajesh/techquiz/internal/progress"
	"github.com/gokatarajesh/techquiz/internal/question"
	"github.com/gokatarajesh/techquiz/internal/quiz"
	"github.com/gokatarajesh/techquiz/internal/selection"
	"github.com/gokatarajesh/techquiz/internal/server"
)

const prefetchQueueSize = 32

// Application aggregates shared infrastructure (stores, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	backends *Backends
	redis    *redis.Client
	http     *http.Server

	questions *question.Service
	fetcher   *question.FetcherWorker
	prefetchQ chan question.CategorySelection
	bgCancels []context.CancelFunc
}

// New bootstraps logger, question store, Redis and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Msg("starting application bootstrap")

	backends, err := OpenBackends(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	redisClient := NewRedis(cfg.Redis)
	backends.Pingers["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }

	progressStore := progress.NewStore(redisClient, cfg.Redis.ProgressPrefix, logger)
	questionSvc := question.NewService(
		backends.Source,
		question.NewCache(redisClient, cfg.Runtime.CacheTTL),
		progressStore,
		logger,
		question.ServiceOptions{
			MaxLimit: cfg.Runtime.MaxLimit,
			Selector: NewSelector(cfg.Runtime.SelectionSeed),
		},
	)

	quizSvc := quiz.NewService(
		questionSvc,
		progressStore,
		quiz.NewStateManager(redisClient, cfg.Runtime.SessionTTL, logger),
		quiz.ServiceOptions{DefaultLimit: cfg.Runtime.DefaultLimit},
		logger,
	)
	quizHandlers := quiz.NewHTTPHandlers(quizSvc, questionSvc, logger)

	prefetchQ := make(chan question.CategorySelection, prefetchQueueSize)
	fetcher := question.NewFetcherWorker(questionSvc, prefetchQ, logger, cfg.Runtime.QuestionFetchTimeout)

	apiServer := server.NewHTTPServer(cfg, logger, backends.Pingers, quizHandlers)

	return &Application{
		cfg:       cfg,
		logger:    logger,
		backends:  backends,
		redis:     redisClient,
		http:      apiServer,
		questions: questionSvc,
		fetcher:   fetcher,
		prefetchQ: prefetchQ,
		bgCancels: make([]context.CancelFunc, 0, 1),
	}, nil
}

// NewSelector returns a reproducible selector when seed is non-zero.
func NewSelector(seed uint64) *selection.Selector {
	if seed != 0 {
		return selection.New(selection.NewSeededPermuter(seed))
	}
	return selection.New(selection.NewRandomPermuter())
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}
	a.fetcher.Stop()

	if err := a.backends.Close(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("question store shutdown error")
	}
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	go a.fetcher.Run()

	bgCtx, cancel := context.WithCancel(ctx)
	a.bgCancels = append(a.bgCancels, cancel)
	go a.prefetchLoop(bgCtx)
}

// prefetchLoop queues the whole catalog for warming at startup and then on
// every prefetch interval. A non-positive interval warms once.
func (a *Application) prefetchLoop(ctx context.Context) {
	a.enqueueCatalog(ctx)

	interval := a.cfg.Runtime.PrefetchInterval
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.enqueueCatalog(ctx)
		}
	}
}

func (a *Application) enqueueCatalog(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, a.cfg.Runtime.QuestionFetchTimeout)
	defer cancel()

	n, err := question.EnqueueCatalog(fetchCtx, a.questions, a.prefetchQ)
	if err != nil {
		a.logger.Warn().Err(err).Msg("catalog prefetch skipped")
		return
	}
	a.logger.Debug().Int("categories", n).Msg("catalog queued for prefetch")
}
