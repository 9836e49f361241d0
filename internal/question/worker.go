package question

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// FetcherWorker warms the question cache so draws rarely hit the remote store.
type FetcherWorker struct {
	service   *Service
	queue     <-chan CategorySelection
	logger    zerolog.Logger
	timeout   time.Duration
	shutdownC chan struct{}
}

func NewFetcherWorker(service *Service, queue <-chan CategorySelection, logger zerolog.Logger, timeout time.Duration) *FetcherWorker {
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &FetcherWorker{
		service:   service,
		queue:     queue,
		logger:    logger.With().Str("component", "question_fetcher").Logger(),
		timeout:   timeout,
		shutdownC: make(chan struct{}),
	}
}

func (w *FetcherWorker) Run() {
	for {
		select {
		case <-w.shutdownC:
			w.logger.Info().Msg("question fetcher stopping")
			return
		case sel := <-w.queue:
			w.handle(sel)
		}
	}
}

func (w *FetcherWorker) handle(sel CategorySelection) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	n, err := w.service.Warm(ctx, sel)
	if err != nil {
		w.logger.Warn().Err(err).Str("category", sel.Category).Msg("prefetch failed")
		return
	}
	w.logger.Debug().Str("category", sel.Category).Int("questions", n).Msg("prefetched")
}

func (w *FetcherWorker) Stop() {
	close(w.shutdownC)
}

// EnqueueCatalog pushes every category of the catalog onto queue, dropping
// entries when the queue is full.
func EnqueueCatalog(ctx context.Context, svc *Service, queue chan<- CategorySelection) (int, error) {
	catalog, err := svc.Catalog(ctx)
	if err != nil {
		return 0, err
	}
	queued := 0
	for category, techs := range catalog {
		select {
		case queue <- CategorySelection{Category: category, TechNames: techs}:
			queued++
		default:
		}
	}
	return queued, nil
}
