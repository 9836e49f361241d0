package question

import (
	"context"
	"sort"

	"github.com/gokatarajesh/techquiz/internal/db/docstore"
	"github.com/gokatarajesh/techquiz/internal/db/queries"
	"github.com/gokatarajesh/techquiz/internal/db/repository"
	"github.com/gokatarajesh/techquiz/internal/question/external"
)

type realtimeProvider interface {
	Categories(ctx context.Context) (map[string][]string, error)
	TechNames(ctx context.Context, category string) ([]string, error)
	FetchTech(ctx context.Context, category, techName string) (map[string]external.RealtimeQuestion, error)
}

// RealtimeSource serves questions from the Firebase Realtime Database tree.
type RealtimeSource struct {
	client realtimeProvider
}

var _ Source = (*RealtimeSource)(nil)

func NewRealtimeSource(client realtimeProvider) *RealtimeSource {
	return &RealtimeSource{client: client}
}

func (s *RealtimeSource) Catalog(ctx context.Context) (map[string][]string, error) {
	return s.client.Categories(ctx)
}

func (s *RealtimeSource) TechNames(ctx context.Context, category string) ([]string, error) {
	return s.client.TechNames(ctx, category)
}

func (s *RealtimeSource) Questions(ctx context.Context, category, techName string) ([]Question, error) {
	records, err := s.client.FetchTech(ctx, category, techName)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	qs := make([]Question, 0, len(ids))
	for _, id := range ids {
		qs = append(qs, normalizeRealtime(id, category, techName, records[id]))
	}
	return qs, nil
}

func normalizeRealtime(id, category, techName string, r external.RealtimeQuestion) Question {
	q := Question{
		ID:       id,
		Category: category,
		TechName: techName,
		Question: r.Question,
		Hint:     r.Hint,
		Answer:   r.Answer,
	}
	if r.Priority.Set {
		q.Priority = r.Priority.Value
	}
	if r.Counter.Set {
		q.Counter = r.Counter.Value
	}
	return q
}

// RepositorySource serves curated questions from Postgres.
type RepositorySource struct {
	repo *repository.QuestionRepository
}

var _ Source = (*RepositorySource)(nil)

func NewRepositorySource(repo *repository.QuestionRepository) *RepositorySource {
	return &RepositorySource{repo: repo}
}

func (s *RepositorySource) Catalog(ctx context.Context) (map[string][]string, error) {
	return s.repo.Catalog(ctx)
}

func (s *RepositorySource) TechNames(ctx context.Context, category string) ([]string, error) {
	return s.repo.TechNames(ctx, category)
}

func (s *RepositorySource) Questions(ctx context.Context, category, techName string) ([]Question, error) {
	rows, err := s.repo.FetchByTech(ctx, category, techName)
	if err != nil {
		return nil, err
	}
	qs := make([]Question, 0, len(rows))
	for _, row := range rows {
		qs = append(qs, fromRow(row))
	}
	return qs, nil
}

func fromRow(row queries.Question) Question {
	q := Question{
		ID:       row.QuestionID,
		Category: row.Category,
		TechName: row.TechName,
		Question: row.Prompt,
		Hint:     row.Hint,
		Answer:   row.Answer,
		Counter:  int(row.SeedCounter),
	}
	if row.Priority.Valid {
		q.Priority = int(row.Priority.Int32)
	}
	return q
}

// DocumentSource serves questions from MongoDB.
type DocumentSource struct {
	store *docstore.QuestionStore
}

var _ Source = (*DocumentSource)(nil)

func NewDocumentSource(store *docstore.QuestionStore) *DocumentSource {
	return &DocumentSource{store: store}
}

func (s *DocumentSource) Catalog(ctx context.Context) (map[string][]string, error) {
	return s.store.Catalog(ctx)
}

func (s *DocumentSource) TechNames(ctx context.Context, category string) ([]string, error) {
	return s.store.TechNames(ctx, category)
}

func (s *DocumentSource) Questions(ctx context.Context, category, techName string) ([]Question, error) {
	docs, err := s.store.FindByTech(ctx, category, techName)
	if err != nil {
		return nil, err
	}
	qs := make([]Question, 0, len(docs))
	for _, d := range docs {
		qs = append(qs, fromDocument(d))
	}
	return qs, nil
}

func fromDocument(d docstore.QuestionDocument) Question {
	q := Question{
		ID:       d.QuestionID,
		Category: d.Category,
		TechName: d.TechName,
		Question: d.Question,
		Hint:     d.Hint,
		Answer:   d.Answer,
		Counter:  d.Counter,
	}
	if d.Priority != nil {
		q.Priority = *d.Priority
	}
	return q
}
