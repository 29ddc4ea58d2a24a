package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quiz-grading-service/internal/domain"
)

// Store is an in-memory implementation of the catalog, attempt and settings
// stores. Foreign keys behave like the SQL schema: deleting a question or
// replacing its options cascades to the attempt answers that reference them.
type Store struct {
	mu    sync.RWMutex
	clock func() time.Time

	nextID    int64
	questions map[int64]domain.Question // Options kept sorted by id
	options   map[int64]domain.Option
	attempts  map[int64]domain.Attempt // Answers carry ids only; texts are joined on read
	settings  []domain.NotificationSetting
}

func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock is useful in tests that need deterministic timestamps.
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{
		clock:     now,
		questions: make(map[int64]domain.Question),
		options:   make(map[int64]domain.Option),
		attempts:  make(map[int64]domain.Attempt),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// CreateQuestion stores a question and its options.
func (s *Store) CreateQuestion(_ context.Context, in domain.QuestionInput) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	q := domain.Question{ID: s.id(), Text: in.Text, CreatedAt: now, UpdatedAt: now}
	q.Options = s.insertOptionsLocked(q.ID, in.Options)
	s.questions[q.ID] = q
	return cloneQuestion(q), nil
}

// UpdateQuestion applies the patch; supplied options replace the whole set.
func (s *Store) UpdateQuestion(_ context.Context, id int64, patch domain.QuestionPatch) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if patch.Text != nil {
		q.Text = *patch.Text
	}
	if patch.Options != nil {
		for _, opt := range q.Options {
			s.deleteOptionLocked(opt.ID)
		}
		q.Options = s.insertOptionsLocked(q.ID, patch.Options)
	}
	q.UpdatedAt = s.clock()
	s.questions[id] = q
	return cloneQuestion(q), nil
}

// DeleteQuestion removes a question and cascades to its options and answers.
func (s *Store) DeleteQuestion(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	for _, opt := range q.Options {
		s.deleteOptionLocked(opt.ID)
	}
	s.dropAnswersLocked(func(a domain.AttemptAnswer) bool { return a.QuestionID == id })
	delete(s.questions, id)
	return nil
}

func (s *Store) insertOptionsLocked(questionID int64, inputs []domain.OptionInput) []domain.Option {
	options := make([]domain.Option, 0, len(inputs))
	for _, in := range inputs {
		opt := domain.Option{ID: s.id(), QuestionID: questionID, Text: in.Text, IsCorrect: in.IsCorrect}
		s.options[opt.ID] = opt
		options = append(options, opt)
	}
	return options
}

func (s *Store) deleteOptionLocked(optionID int64) {
	delete(s.options, optionID)
	s.dropAnswersLocked(func(a domain.AttemptAnswer) bool { return a.SelectedOptionID == optionID })
}

func (s *Store) dropAnswersLocked(match func(domain.AttemptAnswer) bool) {
	for id, attempt := range s.attempts {
		kept := attempt.Answers[:0:0]
		for _, ans := range attempt.Answers {
			if !match(ans) {
				kept = append(kept, ans)
			}
		}
		if len(kept) != len(attempt.Answers) {
			attempt.Answers = kept
			s.attempts[id] = attempt
		}
	}
}

// LoadQuestions returns all questions, newest first.
func (s *Store) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Question, 0, len(s.questions))
	for _, q := range s.questions {
		out = append(out, cloneQuestion(q))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// LoadQuestion returns one question with its options.
func (s *Store) LoadQuestion(_ context.Context, id int64) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return cloneQuestion(q), nil
}

// QuestionsByIDs returns the known questions among ids, without options.
func (s *Store) QuestionsByIDs(_ context.Context, ids []int64) (map[int64]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]domain.Question, len(ids))
	for _, id := range ids {
		if q, ok := s.questions[id]; ok {
			q.Options = nil
			out[id] = q
		}
	}
	return out, nil
}

// OptionsByIDs returns the known options among ids.
func (s *Store) OptionsByIDs(_ context.Context, ids []int64) (map[int64]domain.Option, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]domain.Option, len(ids))
	for _, id := range ids {
		if opt, ok := s.options[id]; ok {
			out[id] = opt
		}
	}
	return out, nil
}

// CreateAttempt stores the attempt and its answers under one lock, so readers
// never observe a partially graded attempt.
func (s *Store) CreateAttempt(_ context.Context, attempt domain.Attempt) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ans := range attempt.Answers {
		opt, ok := s.options[ans.SelectedOptionID]
		if !ok {
			return domain.Attempt{}, domain.ErrOptionNotFound
		}
		if _, ok := s.questions[ans.QuestionID]; !ok {
			return domain.Attempt{}, domain.ErrQuestionNotFound
		}
		if opt.QuestionID != ans.QuestionID {
			return domain.Attempt{}, domain.ErrOptionMismatch
		}
	}

	attempt.ID = s.id()
	attempt.CreatedAt = s.clock()
	answers := make([]domain.AttemptAnswer, len(attempt.Answers))
	for i, ans := range attempt.Answers {
		ans.ID = s.id()
		ans.AttemptID = attempt.ID
		answers[i] = ans
	}
	attempt.Answers = answers
	attempt.Tally()

	s.attempts[attempt.ID] = cloneAttempt(attempt)
	return s.withTextsLocked(attempt), nil
}

// ListAttempts returns up to limit attempts, newest first.
func (s *Store) ListAttempts(_ context.Context, limit int) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Attempt, 0, len(s.attempts))
	for _, a := range s.attempts {
		out = append(out, s.withTextsLocked(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetAttempt returns one attempt with answer texts joined in.
func (s *Store) GetAttempt(_ context.Context, id int64) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.attempts[id]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return s.withTextsLocked(a), nil
}

func (s *Store) withTextsLocked(a domain.Attempt) domain.Attempt {
	out := cloneAttempt(a)
	for i := range out.Answers {
		out.Answers[i].QuestionText = s.questions[out.Answers[i].QuestionID].Text
		out.Answers[i].OptionText = s.options[out.Answers[i].SelectedOptionID].Text
	}
	return out
}

// FirstSetting returns the setting with the lowest id.
func (s *Store) FirstSetting(_ context.Context) (domain.NotificationSetting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.settings) == 0 {
		return domain.NotificationSetting{}, domain.ErrSettingNotFound
	}
	return s.settings[0], nil
}

// ActiveSetting returns the first setting flagged active.
func (s *Store) ActiveSetting(_ context.Context) (domain.NotificationSetting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, setting := range s.settings {
		if setting.IsActive {
			return setting, nil
		}
	}
	return domain.NotificationSetting{}, domain.ErrSettingNotFound
}

func (s *Store) CreateSetting(_ context.Context, setting domain.NotificationSetting) (domain.NotificationSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	setting.ID = s.id()
	setting.CreatedAt = now
	setting.UpdatedAt = now
	s.settings = append(s.settings, setting)
	return setting, nil
}

func (s *Store) UpdateSetting(_ context.Context, setting domain.NotificationSetting) (domain.NotificationSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.settings {
		if s.settings[i].ID == setting.ID {
			setting.CreatedAt = s.settings[i].CreatedAt
			setting.UpdatedAt = s.clock()
			s.settings[i] = setting
			return setting, nil
		}
	}
	return domain.NotificationSetting{}, domain.ErrSettingNotFound
}

func cloneQuestion(q domain.Question) domain.Question {
	q.Options = append([]domain.Option(nil), q.Options...)
	return q
}

func cloneAttempt(a domain.Attempt) domain.Attempt {
	a.Answers = append([]domain.AttemptAnswer(nil), a.Answers...)
	return a
}
