package question

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gokatarajesh/techquiz/internal/db/docstore"
	"github.com/gokatarajesh/techquiz/internal/db/queries"
	"github.com/gokatarajesh/techquiz/internal/question/external"
)

// Sink persists questions. Implemented by the writable stores.
type Sink interface {
	Put(ctx context.Context, q Question) error
}

var (
	_ Sink = (*RepositorySource)(nil)
	_ Sink = (*DocumentSource)(nil)
)

// ParseExport reads a Realtime Database export, either the full tree with a
// top-level "categories" node or the categories node itself. Questions come
// back ordered by category, technology and id.
func ParseExport(r io.Reader) ([]Question, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	if inner, ok := raw["categories"]; ok {
		raw = nil
		if err := json.Unmarshal(inner, &raw); err != nil {
			return nil, fmt.Errorf("decode categories: %w", err)
		}
	}

	var out []Question
	for _, category := range sortedKeys(raw) {
		var techs map[string]map[string]external.RealtimeQuestion
		if err := json.Unmarshal(raw[category], &techs); err != nil {
			return nil, fmt.Errorf("decode category %s: %w", category, err)
		}
		for _, tech := range sortedKeys(techs) {
			records := techs[tech]
			for _, id := range sortedKeys(records) {
				out = append(out, normalizeRealtime(id, category, tech, records[id]))
			}
		}
	}
	return out, nil
}

// Import writes every question to sink and returns how many were stored.
func Import(ctx context.Context, sink Sink, qs []Question) (int, error) {
	for i, q := range qs {
		if q.ID == "" || q.Category == "" || q.TechName == "" {
			return i, fmt.Errorf("question %d: id, category and tech name are required", i)
		}
		if err := sink.Put(ctx, q); err != nil {
			return i, fmt.Errorf("store %s: %w", q.Key(), err)
		}
	}
	return len(qs), nil
}

func (s *RepositorySource) Put(ctx context.Context, q Question) error {
	params := queries.UpsertQuestionParams{
		Category:    q.Category,
		TechName:    q.TechName,
		QuestionID:  q.ID,
		Prompt:      q.Question,
		Hint:        q.Hint,
		Answer:      q.Answer,
		SeedCounter: int32(q.Counter),
	}
	if q.Priority > 0 {
		params.Priority = pgtype.Int4{Int32: int32(q.Priority), Valid: true}
	}
	_, err := s.repo.Upsert(ctx, params)
	return err
}

func (s *DocumentSource) Put(ctx context.Context, q Question) error {
	doc := docstore.QuestionDocument{
		QuestionID: q.ID,
		Category:   q.Category,
		TechName:   q.TechName,
		Question:   q.Question,
		Hint:       q.Hint,
		Answer:     q.Answer,
		Counter:    q.Counter,
	}
	if q.Priority > 0 {
		p := q.Priority
		doc.Priority = &p
	}
	return s.store.Upsert(ctx, doc)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
