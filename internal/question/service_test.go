package question

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/techquiz/internal/db/docstore"
	"github.com/gokatarajesh/techquiz/internal/db/queries"
	"github.com/gokatarajesh/techquiz/internal/question/external"
	"github.com/gokatarajesh/techquiz/internal/selection"
)

type stubSource struct {
	mu      sync.Mutex
	catalog map[string]map[string][]Question
	calls   map[string]int
	err     error
}

func newStubSource(catalog map[string]map[string][]Question) *stubSource {
	return &stubSource{catalog: catalog, calls: map[string]int{}}
}

func (s *stubSource) Catalog(_ context.Context) (map[string][]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := map[string][]string{}
	for category, techs := range s.catalog {
		for tech := range techs {
			out[category] = append(out[category], tech)
		}
	}
	return out, nil
}

func (s *stubSource) TechNames(_ context.Context, category string) ([]string, error) {
	s.mu.Lock()
	s.calls["techs:"+category]++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var names []string
	for tech := range s.catalog[category] {
		names = append(names, tech)
	}
	return names, nil
}

func (s *stubSource) Questions(_ context.Context, category, techName string) ([]Question, error) {
	s.mu.Lock()
	s.calls[category+":"+techName]++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]Question(nil), s.catalog[category][techName]...), nil
}

func (s *stubSource) callCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

type memoryCache struct {
	mu        sync.Mutex
	questions map[string][]Question
	techs     map[string][]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{questions: map[string][]Question{}, techs: map[string][]string{}}
}

func (c *memoryCache) GetQuestions(_ context.Context, category, techName string) ([]Question, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	qs, ok := c.questions[questionsKey(category, techName)]
	return qs, ok, nil
}

func (c *memoryCache) SetQuestions(_ context.Context, category, techName string, qs []Question) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.questions[questionsKey(category, techName)] = qs
	return nil
}

func (c *memoryCache) GetTechNames(_ context.Context, category string) ([]string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	names, ok := c.techs[category]
	return names, ok, nil
}

func (c *memoryCache) SetTechNames(_ context.Context, category string, names []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.techs[category] = names
	return nil
}

type stubCounters struct {
	byUser map[string]map[string]Counters
	err    error
}

func (s *stubCounters) Load(_ context.Context, userID string, keys []string) (map[string]Counters, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := map[string]Counters{}
	for _, k := range keys {
		if c, ok := s.byUser[userID][k]; ok {
			out[k] = c
		}
	}
	return out, nil
}

func goQuestions(n int) []Question {
	qs := make([]Question, n)
	for i := range qs {
		qs[i] = Question{ID: fmt.Sprintf("go-%d", i), Question: fmt.Sprintf("Go question %d", i), Priority: 1 + i%3}
	}
	return qs
}

func newTestService(source Source, cache SetCache, counters CounterStore, opts ServiceOptions) *Service {
	if opts.Selector == nil {
		opts.Selector = selection.New(selection.IdentityPermuter{})
	}
	return NewService(source, cache, counters, zerolog.New(io.Discard), opts)
}

func TestDrawUsesCache(t *testing.T) {
	source := newStubSource(map[string]map[string][]Question{
		CategoryLanguage: {"Go": goQuestions(4)},
	})
	cache := newMemoryCache()
	service := newTestService(source, cache, nil, ServiceOptions{})

	req := DrawRequest{Selections: []CategorySelection{{Category: CategoryLanguage, TechNames: []string{"Go"}}}, Limit: 2}

	first, err := service.Draw(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, first.Questions, 2)

	_, err = service.Draw(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, source.callCount("language:Go"), "second draw should be served from cache")
	assert.Len(t, cache.questions, 1)
}

func TestDrawResolvesAllTechsWhenNoneSelected(t *testing.T) {
	source := newStubSource(map[string]map[string][]Question{
		CategoryFramework: {
			"React": {{ID: "r1", Priority: 1}},
			"Vue":   {{ID: "v1", Priority: 2}},
		},
	})
	service := newTestService(source, newMemoryCache(), nil, ServiceOptions{})

	res, err := service.Draw(context.Background(), DrawRequest{
		Selections: []CategorySelection{{Category: CategoryFramework}},
		Limit:      5,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.PoolSize)
	assert.Equal(t, 3, res.Shortfall)
	require.Len(t, res.Questions, 2)
	assert.Equal(t, "r1", res.Questions[0].ID)
	assert.Equal(t, "React", res.Questions[0].TechName)
	assert.Equal(t, CategoryFramework, res.Questions[1].Category)
	assert.Equal(t, 1, source.callCount("techs:framework"))
}

func TestDrawMergesCounters(t *testing.T) {
	source := newStubSource(map[string]map[string][]Question{
		CategoryLanguage: {"Go": {
			{ID: "seeded", Priority: 1, Counter: 4},
			{ID: "recorded", Priority: 1, Counter: 4},
			{ID: "fresh", Priority: 1},
		}},
	})
	counters := &stubCounters{byUser: map[string]map[string]Counters{
		"user-1": {
			Key(CategoryLanguage, "Go", "recorded"): {Exposure: 1, Missed: 2, Recorded: true},
		},
	}}
	service := newTestService(source, nil, counters, ServiceOptions{})

	res, err := service.Draw(context.Background(), DrawRequest{
		UserID:     "user-1",
		Selections: []CategorySelection{{Category: CategoryLanguage, TechNames: []string{"Go"}}},
		Limit:      3,
	})
	require.NoError(t, err)
	require.Len(t, res.Questions, 3)

	byID := map[string]Drawn{}
	for _, d := range res.Questions {
		byID[d.ID] = d
	}
	assert.Equal(t, 4, byID["seeded"].Exposure, "store counter seeds exposure without history")
	assert.Equal(t, 1, byID["recorded"].Exposure, "recorded history wins over the seed")
	assert.Equal(t, 2, byID["recorded"].Missed)
	assert.InDelta(t, selection.Weight(1, 1, 2), byID["recorded"].Weight, 1e-9)
	assert.Equal(t, []string{"fresh", "recorded", "seeded"}, []string{res.Questions[0].ID, res.Questions[1].ID, res.Questions[2].ID})
}

func TestDrawCounterFailureDegrades(t *testing.T) {
	source := newStubSource(map[string]map[string][]Question{
		CategoryLanguage: {"Go": goQuestions(3)},
	})
	service := newTestService(source, nil, &stubCounters{err: errors.New("redis down")}, ServiceOptions{})

	res, err := service.Draw(context.Background(), DrawRequest{
		UserID:     "user-1",
		Selections: []CategorySelection{{Category: CategoryLanguage, TechNames: []string{"Go"}}},
		Limit:      3,
	})
	require.NoError(t, err)
	assert.Len(t, res.Questions, 3)
}

func TestDrawSourceError(t *testing.T) {
	source := newStubSource(nil)
	source.err = errors.New("store unreachable")
	service := newTestService(source, nil, nil, ServiceOptions{})

	_, err := service.Draw(context.Background(), DrawRequest{
		Selections: []CategorySelection{{Category: CategoryLanguage}},
		Limit:      3,
	})
	assert.ErrorContains(t, err, "store unreachable")
}

func TestDrawLimitBounds(t *testing.T) {
	source := newStubSource(map[string]map[string][]Question{
		CategoryLanguage: {"Go": goQuestions(3)},
	})
	service := newTestService(source, nil, nil, ServiceOptions{MaxLimit: 10})
	sel := []CategorySelection{{Category: CategoryLanguage, TechNames: []string{"Go"}}}

	_, err := service.Draw(context.Background(), DrawRequest{Selections: sel, Limit: 11})
	assert.ErrorIs(t, err, ErrInvalidLimit)

	res, err := service.Draw(context.Background(), DrawRequest{Selections: sel, Limit: 0})
	require.NoError(t, err)
	assert.Empty(t, res.Questions)
	assert.Zero(t, source.callCount("language:Go"), "zero limit should not touch the store")
}

func TestDrawSkipsDuplicateSelections(t *testing.T) {
	source := newStubSource(map[string]map[string][]Question{
		CategoryLanguage: {"Go": goQuestions(2)},
	})
	service := newTestService(source, nil, nil, ServiceOptions{})
	sel := CategorySelection{Category: CategoryLanguage, TechNames: []string{"Go", "Go"}}

	res, err := service.Draw(context.Background(), DrawRequest{Selections: []CategorySelection{sel, sel}, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, res.PoolSize)
	assert.Equal(t, 1, source.callCount("language:Go"))
}

func TestFetcherWorkerWarmsCache(t *testing.T) {
	source := newStubSource(map[string]map[string][]Question{
		CategoryLanguage: {"Go": goQuestions(2), "TypeScript": goQuestions(1)},
	})
	cache := newMemoryCache()
	service := newTestService(source, cache, nil, ServiceOptions{})

	queue := make(chan CategorySelection, 4)
	queued, err := EnqueueCatalog(context.Background(), service, queue)
	require.NoError(t, err)
	assert.Equal(t, 1, queued)

	worker := NewFetcherWorker(service, queue, zerolog.New(io.Discard), 10*time.Millisecond)
	go worker.Run()

	assert.Eventually(t, func() bool {
		cache.mu.Lock()
		defer cache.mu.Unlock()
		return len(cache.questions) == 2
	}, time.Second, 5*time.Millisecond)
	worker.Stop()
}

type stubRealtime struct {
	records map[string]external.RealtimeQuestion
}

func (s *stubRealtime) Categories(context.Context) (map[string][]string, error) {
	return map[string][]string{CategoryLanguage: {"Go"}}, nil
}

func (s *stubRealtime) TechNames(context.Context, string) ([]string, error) {
	return []string{"Go"}, nil
}

func (s *stubRealtime) FetchTech(context.Context, string, string) (map[string]external.RealtimeQuestion, error) {
	return s.records, nil
}

func TestRealtimeSourceNormalizes(t *testing.T) {
	src := NewRealtimeSource(&stubRealtime{records: map[string]external.RealtimeQuestion{
		"b": {Question: "B?", Priority: external.OptionalInt{Value: 3, Set: true}},
		"a": {Question: "A?", Hint: "h", Answer: "x", Counter: external.OptionalInt{Value: 2, Set: true}},
	}})

	qs, err := src.Questions(context.Background(), CategoryLanguage, "Go")
	require.NoError(t, err)
	assert.Equal(t, []Question{
		{ID: "a", Category: CategoryLanguage, TechName: "Go", Question: "A?", Hint: "h", Answer: "x", Counter: 2},
		{ID: "b", Category: CategoryLanguage, TechName: "Go", Question: "B?", Priority: 3},
	}, qs)
}

func TestRowAndDocumentConversion(t *testing.T) {
	row := queries.Question{
		Category: CategoryLanguage, TechName: "Go", QuestionID: "q1",
		Prompt: "P", Hint: "H", Answer: "A",
		Priority:    pgtype.Int4{Int32: 2, Valid: true},
		SeedCounter: 5,
	}
	assert.Equal(t, Question{ID: "q1", Category: CategoryLanguage, TechName: "Go", Question: "P", Hint: "H", Answer: "A", Priority: 2, Counter: 5}, fromRow(row))

	row.Priority = pgtype.Int4{}
	assert.Zero(t, fromRow(row).Priority)

	doc := docstore.QuestionDocument{QuestionID: "d1", Category: CategorySoftSkills, TechName: "HRInterview", Question: "Q", Counter: 1}
	assert.Equal(t, Question{ID: "d1", Category: CategorySoftSkills, TechName: "HRInterview", Question: "Q", Counter: 1}, fromDocument(doc))
}

func TestQuestionKey(t *testing.T) {
	q := Question{ID: "42", Category: CategoryFramework, TechName: "React"}
	assert.Equal(t, "framework:React:42", q.Key())
}
