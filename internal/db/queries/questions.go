package queries

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type Question struct {
	Category    string
	TechName    string
	QuestionID  string
	Prompt      string
	Hint        string
	Answer      string
	Priority    pgtype.Int4
	SeedCounter int32
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

const questionColumns = `category, tech_name, question_id, prompt, hint, answer, priority, seed_counter, created_at, updated_at`

func scanQuestion(row pgx.Row) (Question, error) {
	var i Question
	err := row.Scan(
		&i.Category,
		&i.TechName,
		&i.QuestionID,
		&i.Prompt,
		&i.Hint,
		&i.Answer,
		&i.Priority,
		&i.SeedCounter,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getQuestionsByTech = `SELECT ` + questionColumns + `
FROM questions
WHERE category = $1 AND tech_name = $2
ORDER BY question_id`

type GetQuestionsByTechParams struct {
	Category string
	TechName string
}

func (q *Queries) GetQuestionsByTech(ctx context.Context, arg GetQuestionsByTechParams) ([]Question, error) {
	rows, err := q.db.Query(ctx, getQuestionsByTech, arg.Category, arg.TechName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Question
	for rows.Next() {
		i, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listTechNames = `SELECT DISTINCT tech_name FROM questions WHERE category = $1 ORDER BY tech_name`

func (q *Queries) ListTechNames(ctx context.Context, category string) ([]string, error) {
	rows, err := q.db.Query(ctx, listTechNames, category)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

const listCategoryTechs = `SELECT DISTINCT category, tech_name FROM questions ORDER BY category, tech_name`

type CategoryTech struct {
	Category string
	TechName string
}

func (q *Queries) ListCategoryTechs(ctx context.Context) ([]CategoryTech, error) {
	rows, err := q.db.Query(ctx, listCategoryTechs)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (CategoryTech, error) {
		var i CategoryTech
		err := row.Scan(&i.Category, &i.TechName)
		return i, err
	})
}

const upsertQuestion = `INSERT INTO questions (category, tech_name, question_id, prompt, hint, answer, priority, seed_counter)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (category, tech_name, question_id) DO UPDATE SET
    prompt = EXCLUDED.prompt,
    hint = EXCLUDED.hint,
    answer = EXCLUDED.answer,
    priority = EXCLUDED.priority,
    seed_counter = EXCLUDED.seed_counter,
    updated_at = now()
RETURNING ` + questionColumns

type UpsertQuestionParams struct {
	Category    string
	TechName    string
	QuestionID  string
	Prompt      string
	Hint        string
	Answer      string
	Priority    pgtype.Int4
	SeedCounter int32
}

func (q *Queries) UpsertQuestion(ctx context.Context, arg UpsertQuestionParams) (Question, error) {
	row := q.db.QueryRow(ctx, upsertQuestion,
		arg.Category,
		arg.TechName,
		arg.QuestionID,
		arg.Prompt,
		arg.Hint,
		arg.Answer,
		arg.Priority,
		arg.SeedCounter,
	)
	return scanQuestion(row)
}
