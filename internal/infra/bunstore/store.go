package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quiz-grading-service/internal/domain"

	"github.com/uptrace/bun"
)

// Store persists the catalog, attempts and notification settings in SQL.
// It works against both Postgres and SQLite.
type Store struct {
	db    *bun.DB
	clock func() time.Time
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db, clock: time.Now}
}

func (s *Store) now() time.Time {
	return s.clock().UTC()
}

// CreateQuestion inserts a question and its options in one transaction.
func (s *Store) CreateQuestion(ctx context.Context, in domain.QuestionInput) (domain.Question, error) {
	now := s.now()
	m := &questionModel{Text: in.Text, CreatedAt: now, UpdatedAt: now}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(m).Exec(ctx); err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
		options, err := insertOptions(ctx, tx, m.ID, in.Options)
		if err != nil {
			return err
		}
		m.Options = options
		return nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return m.toDomain(), nil
}

// UpdateQuestion applies the patch. Supplied options replace the whole set:
// existing rows are deleted (cascading to attempt answers) and recreated.
func (s *Store) UpdateQuestion(ctx context.Context, id int64, patch domain.QuestionPatch) (domain.Question, error) {
	m := new(questionModel)

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Model(m).Where("q.id = ?", id).Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrQuestionNotFound
			}
			return fmt.Errorf("select question: %w", err)
		}

		if patch.Text != nil {
			m.Text = *patch.Text
		}
		m.UpdatedAt = s.now()
		if _, err := tx.NewUpdate().Model(m).Column("text", "updated_at").WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("update question: %w", err)
		}

		if patch.Options != nil {
			if _, err := tx.NewDelete().Model((*optionModel)(nil)).Where("question_id = ?", id).Exec(ctx); err != nil {
				return fmt.Errorf("delete options: %w", err)
			}
			if _, err := insertOptions(ctx, tx, id, patch.Options); err != nil {
				return err
			}
		}

		return tx.NewSelect().Model(&m.Options).Where("o.question_id = ?", id).Order("o.id ASC").Scan(ctx)
	})
	if err != nil {
		return domain.Question{}, err
	}
	return m.toDomain(), nil
}

func insertOptions(ctx context.Context, tx bun.Tx, questionID int64, inputs []domain.OptionInput) ([]*optionModel, error) {
	options := make([]*optionModel, 0, len(inputs))
	for _, in := range inputs {
		options = append(options, &optionModel{QuestionID: questionID, Text: in.Text, IsCorrect: in.IsCorrect})
	}
	if len(options) == 0 {
		return options, nil
	}
	if _, err := tx.NewInsert().Model(&options).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert options: %w", err)
	}
	return options, nil
}

// DeleteQuestion removes a question; the schema cascades to options and answers.
func (s *Store) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*questionModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

// LoadQuestions returns every question with its options, newest first.
func (s *Store) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	var models []*questionModel
	err := s.db.NewSelect().
		Model(&models).
		Relation("Options", orderOptions).
		Order("q.created_at DESC", "q.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}

	out := make([]domain.Question, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

// LoadQuestion returns one question with its options.
func (s *Store) LoadQuestion(ctx context.Context, id int64) (domain.Question, error) {
	m := new(questionModel)
	err := s.db.NewSelect().
		Model(m).
		Relation("Options", orderOptions).
		Where("q.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("select question: %w", err)
	}
	return m.toDomain(), nil
}

func orderOptions(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Order("o.id ASC")
}

// QuestionsByIDs returns the existing questions among ids, without options.
func (s *Store) QuestionsByIDs(ctx context.Context, ids []int64) (map[int64]domain.Question, error) {
	out := make(map[int64]domain.Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var models []*questionModel
	if err := s.db.NewSelect().Model(&models).Where("q.id IN (?)", bun.In(ids)).Scan(ctx); err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	for _, m := range models {
		q := m.toDomain()
		q.Options = nil
		out[q.ID] = q
	}
	return out, nil
}

// OptionsByIDs returns the existing options among ids.
func (s *Store) OptionsByIDs(ctx context.Context, ids []int64) (map[int64]domain.Option, error) {
	out := make(map[int64]domain.Option, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var models []*optionModel
	if err := s.db.NewSelect().Model(&models).Where("o.id IN (?)", bun.In(ids)).Scan(ctx); err != nil {
		return nil, fmt.Errorf("select options: %w", err)
	}
	for _, m := range models {
		out[m.ID] = m.toDomain()
	}
	return out, nil
}
