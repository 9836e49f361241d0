package question

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/techquiz/internal/metrics"
	"github.com/gokatarajesh/techquiz/internal/selection"
)

// Source is the remote question store. A category or technology without data
// yields an empty result, not an error.
type Source interface {
	Catalog(ctx context.Context) (map[string][]string, error)
	TechNames(ctx context.Context, category string) ([]string, error)
	Questions(ctx context.Context, category, techName string) ([]Question, error)
}

// SetCache defines cache behavior (implemented by Redis-backed Cache).
type SetCache interface {
	GetQuestions(ctx context.Context, category, techName string) ([]Question, bool, error)
	SetQuestions(ctx context.Context, category, techName string, qs []Question) error
	GetTechNames(ctx context.Context, category string) ([]string, bool, error)
	SetTechNames(ctx context.Context, category string, names []string) error
}

// CounterStore supplies per-user exposure and missed counts keyed by Question.Key.
type CounterStore interface {
	Load(ctx context.Context, userID string, keys []string) (map[string]Counters, error)
}

type ServiceOptions struct {
	// MaxLimit caps DrawRequest.Limit; zero disables the cap.
	MaxLimit int
	// Selector defaults to one backed by the process-wide random source.
	Selector *selection.Selector
}

// Service loads candidate pools from the store, merges user counters and runs selection.
type Service struct {
	source   Source
	cache    SetCache
	counters CounterStore
	selector *selection.Selector
	maxLimit int
	logger   zerolog.Logger
}

func NewService(source Source, cache SetCache, counters CounterStore, logger zerolog.Logger, opts ServiceOptions) *Service {
	if cache == nil {
		cache = nopCache{}
	}
	selector := opts.Selector
	if selector == nil {
		selector = selection.New(nil)
	}
	return &Service{
		source:   source,
		cache:    cache,
		counters: counters,
		selector: selector,
		maxLimit: opts.MaxLimit,
		logger:   logger.With().Str("component", "question_service").Logger(),
	}
}

// Catalog lists every category with its technologies.
func (s *Service) Catalog(ctx context.Context) (map[string][]string, error) {
	catalog, err := s.source.Catalog(ctx)
	if err != nil {
		metrics.SourceErrors.WithLabelValues("catalog").Inc()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return catalog, nil
}

// Draw returns the ordered questions to present for req. A pool smaller than
// the limit yields a shorter result with Shortfall set.
func (s *Service) Draw(ctx context.Context, req DrawRequest) (DrawResult, error) {
	if s.maxLimit > 0 && req.Limit > s.maxLimit {
		return DrawResult{}, fmt.Errorf("%w: %d exceeds %d", ErrInvalidLimit, req.Limit, s.maxLimit)
	}
	start := time.Now()
	defer func() { metrics.DrawDuration.Observe(time.Since(start).Seconds()) }()

	result := DrawResult{Questions: []Drawn{}, Requested: max(req.Limit, 0)}
	if req.Limit <= 0 {
		return result, nil
	}

	pool, err := s.loadPool(ctx, req.Selections)
	if err != nil {
		return DrawResult{}, err
	}
	result.PoolSize = len(pool)
	metrics.DrawPoolSize.Observe(float64(len(pool)))

	keys := make([]string, len(pool))
	for i, q := range pool {
		keys[i] = q.Key()
	}
	counters := s.loadCounters(ctx, req.UserID, keys)

	byKey := make(map[string]Question, len(pool))
	candidates := make([]selection.Candidate, 0, len(pool))
	for i, q := range pool {
		byKey[keys[i]] = q
		candidates = append(candidates, toCandidate(keys[i], q, counters[keys[i]]))
	}

	for _, picked := range s.selector.Select(candidates, req.Limit) {
		result.Questions = append(result.Questions, Drawn{
			Question: byKey[picked.ID],
			Exposure: picked.Exposure,
			Missed:   picked.Missed,
			Weight:   picked.Weight,
		})
	}

	result.Shortfall = req.Limit - len(result.Questions)
	if result.Shortfall > 0 {
		metrics.DrawShortfall.Add(float64(result.Shortfall))
		s.logger.Debug().
			Int("requested", req.Limit).
			Int("pool", len(pool)).
			Msg("pool smaller than requested limit")
	}
	return result, nil
}

// Warm loads a selection through the cache without drawing.
func (s *Service) Warm(ctx context.Context, sel CategorySelection) (int, error) {
	pool, err := s.loadPool(ctx, []CategorySelection{sel})
	return len(pool), err
}

// toCandidate merges counters: recorded history wins over the store's seed.
func toCandidate(key string, q Question, c Counters) selection.Candidate {
	exposure := q.Counter
	if c.Recorded {
		exposure = c.Exposure
	}
	return selection.Candidate{
		ID:       key,
		Category: q.Category,
		TechName: q.TechName,
		Priority: q.Priority,
		Exposure: exposure,
		Missed:   c.Missed,
	}
}

func (s *Service) loadCounters(ctx context.Context, userID string, keys []string) map[string]Counters {
	if s.counters == nil || userID == "" || len(keys) == 0 {
		return map[string]Counters{}
	}
	counters, err := s.counters.Load(ctx, userID, keys)
	if err != nil {
		// Selection still works on store seeds; history only sharpens it.
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("counter load failed")
		return map[string]Counters{}
	}
	return counters
}

func (s *Service) loadPool(ctx context.Context, selections []CategorySelection) ([]Question, error) {
	type pair struct{ category, tech string }
	visited := make(map[pair]bool)

	var pool []Question
	for _, sel := range selections {
		if sel.Category == "" {
			continue
		}
		techs := sel.TechNames
		if len(techs) == 0 {
			var err error
			if techs, err = s.techNames(ctx, sel.Category); err != nil {
				return nil, err
			}
		}
		for _, tech := range techs {
			p := pair{sel.Category, tech}
			if visited[p] {
				continue
			}
			visited[p] = true

			qs, err := s.questions(ctx, sel.Category, tech)
			if err != nil {
				return nil, err
			}
			pool = append(pool, qs...)
		}
	}
	return pool, nil
}

func (s *Service) techNames(ctx context.Context, category string) ([]string, error) {
	if names, ok, err := s.cache.GetTechNames(ctx, category); err == nil && ok {
		metrics.CacheLookups.WithLabelValues("techs", "hit").Inc()
		return names, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Str("category", category).Msg("tech cache read failed")
	}
	metrics.CacheLookups.WithLabelValues("techs", "miss").Inc()

	names, err := s.source.TechNames(ctx, category)
	if err != nil {
		metrics.SourceErrors.WithLabelValues("techs").Inc()
		return nil, fmt.Errorf("list technologies for %s: %w", category, err)
	}
	if err := s.cache.SetTechNames(ctx, category, names); err != nil {
		s.logger.Warn().Err(err).Str("category", category).Msg("tech cache write failed")
	}
	return names, nil
}

func (s *Service) questions(ctx context.Context, category, tech string) ([]Question, error) {
	if qs, ok, err := s.cache.GetQuestions(ctx, category, tech); err == nil && ok {
		metrics.CacheLookups.WithLabelValues("questions", "hit").Inc()
		return qs, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Str("category", category).Str("tech", tech).Msg("question cache read failed")
	}
	metrics.CacheLookups.WithLabelValues("questions", "miss").Inc()

	qs, err := s.source.Questions(ctx, category, tech)
	if err != nil {
		metrics.SourceErrors.WithLabelValues("questions").Inc()
		return nil, fmt.Errorf("load %s/%s questions: %w", category, tech, err)
	}
	for i := range qs {
		qs[i].Category = category
		qs[i].TechName = tech
	}
	if err := s.cache.SetQuestions(ctx, category, tech, qs); err != nil {
		s.logger.Warn().Err(err).Str("category", category).Str("tech", tech).Msg("question cache write failed")
	}
	return qs, nil
}

type nopCache struct{}

func (nopCache) GetQuestions(context.Context, string, string) ([]Question, bool, error) {
	return nil, false, nil
}
func (nopCache) SetQuestions(context.Context, string, string, []Question) error { return nil }
func (nopCache) GetTechNames(context.Context, string) ([]string, bool, error) {
	return nil, false, nil
}
func (nopCache) SetTechNames(context.Context, string, []string) error { return nil }
