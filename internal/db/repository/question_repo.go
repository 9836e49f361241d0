package repository

import (
	"context"

	"github.com/gokatarajesh/techquiz/internal/db/queries"
)

type questionStore interface {
	GetQuestionsByTech(ctx context.Context, arg queries.GetQuestionsByTechParams) ([]queries.Question, error)
	ListTechNames(ctx context.Context, category string) ([]string, error)
	ListCategoryTechs(ctx context.Context) ([]queries.CategoryTech, error)
	UpsertQuestion(ctx context.Context, arg queries.UpsertQuestionParams) (queries.Question, error)
}

// QuestionRepository wraps the typed queries for curated question access.
type QuestionRepository struct {
	store questionStore
}

func NewQuestionRepository(store questionStore) *QuestionRepository {
	return &QuestionRepository{store: store}
}

// FetchByTech returns every question filed under category/techName.
func (r *QuestionRepository) FetchByTech(ctx context.Context, category, techName string) ([]queries.Question, error) {
	return r.store.GetQuestionsByTech(ctx, queries.GetQuestionsByTechParams{
		Category: category,
		TechName: techName,
	})
}

// TechNames lists the technologies that have at least one question in category.
func (r *QuestionRepository) TechNames(ctx context.Context, category string) ([]string, error) {
	return r.store.ListTechNames(ctx, category)
}

// Catalog groups technology names by category.
func (r *QuestionRepository) Catalog(ctx context.Context) (map[string][]string, error) {
	rows, err := r.store.ListCategoryTechs(ctx)
	if err != nil {
		return nil, err
	}
	catalog := make(map[string][]string)
	for _, row := range rows {
		catalog[row.Category] = append(catalog[row.Category], row.TechName)
	}
	return catalog, nil
}

// Upsert stores or refreshes a curated question.
func (r *QuestionRepository) Upsert(ctx context.Context, params queries.UpsertQuestionParams) (queries.Question, error) {
	return r.store.UpsertQuestion(ctx, params)
}
