package postgres

import (
	"context"
	"fmt"

	"quiz-grading-service/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionLoader reads the catalog straight from Postgres for the read cache.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

// LoadQuestions returns every question with its options, newest first.
func (l *QuestionLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, text, created_at, updated_at FROM questions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	questions, err := scanQuestions(rows)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return questions, nil
	}

	ids := make([]int64, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	options, err := l.loadOptions(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		questions[i].Options = options[questions[i].ID]
	}
	return questions, nil
}

// LoadQuestion returns one question with its options.
func (l *QuestionLoader) LoadQuestion(ctx context.Context, id int64) (domain.Question, error) {
	q := domain.Question{ID: id}
	err := l.pool.QueryRow(ctx, `SELECT text, created_at, updated_at FROM questions WHERE id=$1`, id).
		Scan(&q.Text, &q.CreatedAt, &q.UpdatedAt)
	if err == pgx.ErrNoRows {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("load question: %w", err)
	}

	options, err := l.loadOptions(ctx, []int64{id})
	if err != nil {
		return domain.Question{}, err
	}
	q.Options = options[id]
	return q, nil
}

func (l *QuestionLoader) loadOptions(ctx context.Context, questionIDs []int64) (map[int64][]domain.Option, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, question_id, text, is_correct FROM answer_options WHERE question_id = ANY($1) ORDER BY id`,
		questionIDs)
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]domain.Option, len(questionIDs))
	for rows.Next() {
		var opt domain.Option
		if err := rows.Scan(&opt.ID, &opt.QuestionID, &opt.Text, &opt.IsCorrect); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		out[opt.QuestionID] = append(out[opt.QuestionID], opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	for _, id := range questionIDs {
		if out[id] == nil {
			out[id] = []domain.Option{}
		}
	}
	return out, nil
}

func scanQuestions(rows pgx.Rows) ([]domain.Question, error) {
	defer rows.Close()

	questions := make([]domain.Question, 0)
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return questions, nil
}
