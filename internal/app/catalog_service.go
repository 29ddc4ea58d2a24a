package app

import (
	"context"
	"log"

	"quiz-grading-service/internal/domain"
)

// CatalogService contains the question catalog use cases.
type CatalogService struct {
	store  QuestionStore
	reader QuestionReader
}

func NewCatalogService(store QuestionStore, reader QuestionReader) *CatalogService {
	return &CatalogService{store: store, reader: reader}
}

// List returns every question with its options, newest first.
func (s *CatalogService) List(ctx context.Context) ([]domain.Question, error) {
	return s.reader.LoadQuestions(ctx)
}

// Get returns one question with its options.
func (s *CatalogService) Get(ctx context.Context, id int64) (domain.Question, error) {
	return s.reader.LoadQuestion(ctx, id)
}

// Create validates and stores a new question together with its options.
func (s *CatalogService) Create(ctx context.Context, in domain.QuestionInput) (domain.Question, error) {
	if err := domain.ValidateOptions(in.Options); err != nil {
		return domain.Question{}, err
	}
	q, err := s.store.CreateQuestion(ctx, in)
	if err != nil {
		return domain.Question{}, err
	}
	s.invalidate(ctx)
	return q, nil
}

// Update changes the text and/or replaces the whole option set of a question.
func (s *CatalogService) Update(ctx context.Context, id int64, patch domain.QuestionPatch) (domain.Question, error) {
	if patch.Options != nil {
		if err := domain.ValidateOptions(patch.Options); err != nil {
			return domain.Question{}, err
		}
	}
	q, err := s.store.UpdateQuestion(ctx, id, patch)
	if err != nil {
		return domain.Question{}, err
	}
	s.invalidate(ctx, id)
	return q, nil
}

// Delete removes a question, its options and every attempt answer pointing at them.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteQuestion(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// invalidate runs after a committed write, so a failure only leaves the cache stale until its TTL.
func (s *CatalogService) invalidate(ctx context.Context, ids ...int64) {
	if err := s.reader.Invalidate(ctx, ids...); err != nil {
		log.Printf("catalog cache invalidation failed: %v", err)
	}
}
