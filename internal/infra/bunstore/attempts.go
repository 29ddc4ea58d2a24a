package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quiz-grading-service/internal/domain"

	"github.com/uptrace/bun"
)

// CreateAttempt stores the attempt shell with zero counters, bulk inserts
// the answers and finalises the counters, all in one transaction. A question
// or option deleted since validation aborts the transaction.
func (s *Store) CreateAttempt(ctx context.Context, attempt domain.Attempt) (domain.Attempt, error) {
	attempt.Tally()
	m := &attemptModel{
		FirstName:      attempt.FirstName,
		LastName:       attempt.LastName,
		TotalQuestions: attempt.TotalQuestions,
		CreatedAt:      s.now(),
	}
	answers := make([]*answerModel, 0, len(attempt.Answers))

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(m).Exec(ctx); err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}

		for _, ans := range attempt.Answers {
			answers = append(answers, &answerModel{
				AttemptID:        m.ID,
				QuestionID:       ans.QuestionID,
				SelectedOptionID: ans.SelectedOptionID,
				IsCorrect:        ans.IsCorrect,
			})
		}
		if len(answers) > 0 {
			if _, err := tx.NewInsert().Model(&answers).Exec(ctx); err != nil {
				return fmt.Errorf("insert answers: %w", err)
			}
		}

		m.CorrectAnswers = attempt.CorrectAnswers
		m.IncorrectAnswers = attempt.IncorrectAnswers
		if _, err := tx.NewUpdate().Model(m).Column("correct_answers", "incorrect_answers").WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("update counters: %w", err)
		}
		return nil
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Attempt{}, domain.ErrOptionNotFound
		}
		return domain.Attempt{}, err
	}

	out := m.toDomain()
	out.Answers = make([]domain.AttemptAnswer, len(attempt.Answers))
	for i, ans := range attempt.Answers {
		ans.ID = answers[i].ID
		ans.AttemptID = m.ID
		out.Answers[i] = ans
	}
	return out, nil
}

// ListAttempts returns up to limit attempts, newest first, with their answers.
func (s *Store) ListAttempts(ctx context.Context, limit int) ([]domain.Attempt, error) {
	var models []*attemptModel
	q := s.db.NewSelect().Model(&models).Order("ta.created_at DESC", "ta.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select attempts: %w", err)
	}

	out := make([]domain.Attempt, 0, len(models))
	if len(models) == 0 {
		return out, nil
	}
	ids := make([]int64, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}
	answers, err := s.answersByAttempt(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, m := range models {
		a := m.toDomain()
		a.Answers = answers[m.ID]
		out = append(out, a)
	}
	return out, nil
}

// GetAttempt returns one attempt with its answers.
func (s *Store) GetAttempt(ctx context.Context, id int64) (domain.Attempt, error) {
	m := new(attemptModel)
	err := s.db.NewSelect().Model(m).Where("ta.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("select attempt: %w", err)
	}

	answers, err := s.answersByAttempt(ctx, []int64{id})
	if err != nil {
		return domain.Attempt{}, err
	}
	a := m.toDomain()
	a.Answers = answers[id]
	return a, nil
}

// answersByAttempt loads answers joined with the current question and option texts.
func (s *Store) answersByAttempt(ctx context.Context, attemptIDs []int64) (map[int64][]domain.AttemptAnswer, error) {
	var rows []answerRow
	err := s.db.NewSelect().
		TableExpr("attempt_answers AS aa").
		ColumnExpr("aa.id, aa.attempt_id, aa.question_id, aa.selected_option_id, aa.is_correct").
		ColumnExpr("q.text AS question_text").
		ColumnExpr("o.text AS option_text").
		Join("JOIN questions AS q ON q.id = aa.question_id").
		Join("JOIN answer_options AS o ON o.id = aa.selected_option_id").
		Where("aa.attempt_id IN (?)", bun.In(attemptIDs)).
		OrderExpr("aa.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("select answers: %w", err)
	}

	out := make(map[int64][]domain.AttemptAnswer, len(attemptIDs))
	for _, r := range rows {
		out[r.AttemptID] = append(out[r.AttemptID], r.toDomain())
	}
	return out, nil
}
