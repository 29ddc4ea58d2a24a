package app

import (
	"context"

	"quiz-grading-service/internal/domain"
)

// QuestionStore persists catalog writes.
type QuestionStore interface {
	CreateQuestion(ctx context.Context, in domain.QuestionInput) (domain.Question, error)
	UpdateQuestion(ctx context.Context, id int64, patch domain.QuestionPatch) (domain.Question, error)
	DeleteQuestion(ctx context.Context, id int64) error
}

// QuestionLoader reads questions (with all options) from a backing store.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
	LoadQuestion(ctx context.Context, id int64) (domain.Question, error)
}

// QuestionReader serves catalog reads, normally through a cache in front of a QuestionLoader.
type QuestionReader interface {
	QuestionLoader
	// Invalidate drops the cached list and the given questions.
	Invalidate(ctx context.Context, ids ...int64) error
}

// AttemptStore backs the grading engine.
type AttemptStore interface {
	// QuestionsByIDs returns the existing questions among ids, keyed by id. Options are not loaded.
	QuestionsByIDs(ctx context.Context, ids []int64) (map[int64]domain.Question, error)
	// OptionsByIDs returns the existing options among ids, keyed by id.
	OptionsByIDs(ctx context.Context, ids []int64) (map[int64]domain.Option, error)
	// CreateAttempt atomically stores the attempt shell, its answers and the final counters.
	CreateAttempt(ctx context.Context, attempt domain.Attempt) (domain.Attempt, error)
	ListAttempts(ctx context.Context, limit int) ([]domain.Attempt, error)
	GetAttempt(ctx context.Context, id int64) (domain.Attempt, error)
}

// SettingsStore persists notification settings. Both lookups return
// domain.ErrSettingNotFound when nothing matches.
type SettingsStore interface {
	FirstSetting(ctx context.Context) (domain.NotificationSetting, error)
	ActiveSetting(ctx context.Context) (domain.NotificationSetting, error)
	CreateSetting(ctx context.Context, s domain.NotificationSetting) (domain.NotificationSetting, error)
	UpdateSetting(ctx context.Context, s domain.NotificationSetting) (domain.NotificationSetting, error)
}

// Notifier delivers a graded attempt somewhere outside the service. It never fails the caller.
type Notifier interface {
	Send(ctx context.Context, attempt domain.Attempt) domain.Delivery
}

// Publisher fans graded attempts out to live subscribers.
type Publisher interface {
	Publish(attempt domain.Attempt)
}

// Store is the full set of persistence a storage backend provides.
type Store interface {
	QuestionStore
	QuestionLoader
	AttemptStore
	SettingsStore
}
