package app

import (
	"context"
	"fmt"
	"log"

	"quiz-grading-service/internal/domain"
)

// MaxListedAttempts caps the admin attempt listing.
const MaxListedAttempts = 25

// AttemptService is the grading engine: it validates a submission, grades it,
// persists it in one transaction and then notifies.
type AttemptService struct {
	store    AttemptStore
	notifier Notifier
	feed     Publisher
}

// NewAttemptService wires the engine. notifier and feed may be nil.
func NewAttemptService(store AttemptStore, notifier Notifier, feed Publisher) *AttemptService {
	return &AttemptService{store: store, notifier: notifier, feed: feed}
}

// Submit grades and stores a submission. Nothing is written unless every
// response passes validation, and notification failures never reach the caller.
func (s *AttemptService) Submit(ctx context.Context, sub domain.Submission) (domain.Attempt, error) {
	answers, err := s.grade(ctx, sub.Responses)
	if err != nil {
		return domain.Attempt{}, err
	}

	attempt, err := s.store.CreateAttempt(ctx, domain.Attempt{
		FirstName: sub.FirstName,
		LastName:  sub.LastName,
		Answers:   answers,
	})
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("create attempt: %w", err)
	}

	if s.feed != nil {
		s.feed.Publish(attempt)
	}
	if s.notifier != nil {
		// The attempt is committed; a caller going away must not skip delivery.
		notifyCtx := context.WithoutCancel(ctx)
		if delivery := s.notifier.Send(notifyCtx, attempt); !delivery.Sent {
			log.Printf("attempt %d: notification not sent: %s", attempt.ID, delivery.Reason)
		}
	}
	return attempt, nil
}

// List returns the most recent attempts, newest first.
func (s *AttemptService) List(ctx context.Context, limit int) ([]domain.Attempt, error) {
	if limit <= 0 || limit > MaxListedAttempts {
		limit = MaxListedAttempts
	}
	return s.store.ListAttempts(ctx, limit)
}

// Get returns one attempt with its answers.
func (s *AttemptService) Get(ctx context.Context, id int64) (domain.Attempt, error) {
	return s.store.GetAttempt(ctx, id)
}

// grade validates every response against two bulk lookups and snapshots the
// correctness of each selected option.
func (s *AttemptService) grade(ctx context.Context, responses []domain.Response) ([]domain.AttemptAnswer, error) {
	if len(responses) == 0 {
		return nil, domain.ErrEmptyResponses
	}

	questionIDs, optionIDs := distinctIDs(responses)
	questions, err := s.store.QuestionsByIDs(ctx, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	options, err := s.store.OptionsByIDs(ctx, optionIDs)
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	if len(questions) < len(questionIDs) {
		return nil, domain.ErrQuestionNotFound
	}
	if len(options) < len(optionIDs) {
		return nil, domain.ErrOptionNotFound
	}

	answers := make([]domain.AttemptAnswer, 0, len(responses))
	for _, r := range responses {
		question, qok := questions[r.QuestionID]
		option, ook := options[r.OptionID]
		if !qok || !ook {
			// Only reachable with a store that returns foreign ids.
			return nil, domain.ErrQuestionNotFound
		}
		// Checked per pair: the same option may be reused against another question in one batch.
		if option.QuestionID != question.ID {
			return nil, domain.ErrOptionMismatch
		}
		answers = append(answers, domain.AttemptAnswer{
			QuestionID:       question.ID,
			QuestionText:     question.Text,
			SelectedOptionID: option.ID,
			OptionText:       option.Text,
			IsCorrect:        option.IsCorrect,
		})
	}
	return answers, nil
}

func distinctIDs(responses []domain.Response) (questionIDs, optionIDs []int64) {
	seenQ := make(map[int64]struct{}, len(responses))
	seenO := make(map[int64]struct{}, len(responses))
	for _, r := range responses {
		if _, ok := seenQ[r.QuestionID]; !ok {
			seenQ[r.QuestionID] = struct{}{}
			questionIDs = append(questionIDs, r.QuestionID)
		}
		if _, ok := seenO[r.OptionID]; !ok {
			seenO[r.OptionID] = struct{}{}
			optionIDs = append(optionIDs, r.OptionID)
		}
	}
	return questionIDs, optionIDs
}
