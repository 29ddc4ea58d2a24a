package bunstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"quiz-grading-service/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "quiz.db")

	db, err := Open(ctx, DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// Migrating twice is a no-op.
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("migrate again: %v", err)
	}

	store := NewStore(db)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.clock = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	return store
}

func seedQuestion(t *testing.T, store *Store, text string) domain.Question {
	t.Helper()
	q, err := store.CreateQuestion(context.Background(), domain.QuestionInput{
		Text: text,
		Options: []domain.OptionInput{
			{Text: "3", IsCorrect: false},
			{Text: "4", IsCorrect: true},
		},
	})
	if err != nil {
		t.Fatalf("seed question: %v", err)
	}
	return q
}

func TestStoreQuestionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	q := seedQuestion(t, store, "What is 2 + 2?")
	if q.ID == 0 || len(q.Options) != 2 || q.Options[0].ID == 0 || q.Options[1].QuestionID != q.ID {
		t.Fatalf("ids not assigned: %+v", q)
	}

	loaded, err := store.LoadQuestion(ctx, q.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Text != q.Text || len(loaded.Options) != 2 || !loaded.Options[1].IsCorrect {
		t.Fatalf("unexpected question %+v", loaded)
	}
	if loaded.Options[0].ID > loaded.Options[1].ID {
		t.Fatalf("options must be ordered by id")
	}

	oldOptionID := q.Options[0].ID
	updated, err := store.UpdateQuestion(ctx, q.ID, domain.QuestionPatch{
		Options: []domain.OptionInput{{Text: "four", IsCorrect: true}, {Text: "five"}, {Text: "six"}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Text != q.Text || len(updated.Options) != 3 || updated.Options[0].Text != "four" {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if got, _ := store.OptionsByIDs(ctx, []int64{oldOptionID}); len(got) != 0 {
		t.Fatalf("old options must be deleted")
	}

	text := "What is 2 * 2?"
	updated, err = store.UpdateQuestion(ctx, q.ID, domain.QuestionPatch{Text: &text})
	if err != nil {
		t.Fatalf("text update: %v", err)
	}
	if updated.Text != text || len(updated.Options) != 3 {
		t.Fatalf("text-only update must keep options, got %+v", updated)
	}

	if _, err := store.UpdateQuestion(ctx, 999, domain.QuestionPatch{Text: &text}); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.DeleteQuestion(ctx, q.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.LoadQuestion(ctx, q.ID); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.DeleteQuestion(ctx, q.ID); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if got, _ := store.OptionsByIDs(ctx, []int64{updated.Options[0].ID}); len(got) != 0 {
		t.Fatalf("options must cascade with their question")
	}
}

func TestStoreListsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	first := seedQuestion(t, store, "first")
	second := seedQuestion(t, store, "second")

	list, err := store.LoadQuestions(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("unexpected order %+v", list)
	}
	if len(list[0].Options) != 2 || len(list[1].Options) != 2 {
		t.Fatalf("options not loaded %+v", list)
	}
}

func TestStoreBulkLookups(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	q := seedQuestion(t, store, "Q")

	questions, err := store.QuestionsByIDs(ctx, []int64{q.ID, 999})
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(questions) != 1 || questions[q.ID].Text != "Q" {
		t.Fatalf("unexpected questions %+v", questions)
	}
	options, err := store.OptionsByIDs(ctx, []int64{q.Options[0].ID, q.Options[1].ID, 999})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if len(options) != 2 || options[q.Options[1].ID].QuestionID != q.ID || !options[q.Options[1].ID].IsCorrect {
		t.Fatalf("unexpected options %+v", options)
	}
	if empty, err := store.OptionsByIDs(ctx, nil); err != nil || len(empty) != 0 {
		t.Fatalf("expected empty lookup, got %v %v", empty, err)
	}
}

func TestStoreAttemptLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	q1 := seedQuestion(t, store, "Q1")
	q2 := seedQuestion(t, store, "Q2")

	attempt, err := store.CreateAttempt(ctx, domain.Attempt{
		FirstName: "Ali",
		LastName:  "Valiyev",
		Answers: []domain.AttemptAnswer{
			{QuestionID: q1.ID, QuestionText: "Q1", SelectedOptionID: q1.Options[1].ID, OptionText: "4", IsCorrect: true},
			{QuestionID: q2.ID, QuestionText: "Q2", SelectedOptionID: q2.Options[0].ID, OptionText: "3", IsCorrect: false},
		},
	})
	if err != nil {
		t.Fatalf("create attempt: %v", err)
	}
	if attempt.ID == 0 || attempt.Answers[0].ID == 0 || attempt.Answers[1].AttemptID != attempt.ID {
		t.Fatalf("ids not assigned: %+v", attempt)
	}
	if attempt.TotalQuestions != 2 || attempt.CorrectAnswers != 1 || attempt.IncorrectAnswers != 1 {
		t.Fatalf("unexpected counters %+v", attempt)
	}

	got, err := store.GetAttempt(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CorrectAnswers != 1 || len(got.Answers) != 2 || got.Answers[0].QuestionText != "Q1" || got.Answers[1].OptionText != "3" {
		t.Fatalf("unexpected stored attempt %+v", got)
	}

	second, err := store.CreateAttempt(ctx, domain.Attempt{
		FirstName: "Vali",
		LastName:  "Aliyev",
		Answers:   []domain.AttemptAnswer{{QuestionID: q1.ID, SelectedOptionID: q1.Options[0].ID}},
	})
	if err != nil {
		t.Fatalf("second attempt: %v", err)
	}
	list, err := store.ListAttempts(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != second.ID || len(list[0].Answers) != 1 {
		t.Fatalf("expected newest attempt only, got %+v", list)
	}

	if err := store.DeleteQuestion(ctx, q1.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = store.GetAttempt(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if len(got.Answers) != 1 || got.Answers[0].QuestionID != q2.ID || got.CorrectAnswers != 1 {
		t.Fatalf("expected cascade with historical counters, got %+v", got)
	}

	if _, err := store.GetAttempt(ctx, 999); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected attempt not found, got %v", err)
	}
}

func TestStoreAttemptRollsBackOnMissingOption(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	q := seedQuestion(t, store, "Q")

	_, err := store.CreateAttempt(ctx, domain.Attempt{
		FirstName: "Ali",
		LastName:  "Valiyev",
		Answers: []domain.AttemptAnswer{
			{QuestionID: q.ID, SelectedOptionID: q.Options[0].ID},
			{QuestionID: q.ID, SelectedOptionID: 999},
		},
	})
	if !errors.Is(err, domain.ErrOptionNotFound) {
		t.Fatalf("expected option not found, got %v", err)
	}
	list, err := store.ListAttempts(ctx, 25)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("the attempt shell must be rolled back, got %+v", list)
	}
}

func TestStoreSettings(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.FirstSetting(ctx); !errors.Is(err, domain.ErrSettingNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	created, err := store.CreateSetting(ctx, domain.NotificationSetting{BotToken: "tok"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.ActiveSetting(ctx); !errors.Is(err, domain.ErrSettingNotFound) {
		t.Fatalf("inactive setting must not be returned, got %v", err)
	}

	created.IsActive = true
	created.AdminChatID = "42"
	if _, err := store.UpdateSetting(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}
	active, err := store.ActiveSetting(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active.ID != created.ID || active.BotToken != "tok" || active.AdminChatID != "42" {
		t.Fatalf("unexpected active setting %+v", active)
	}

	if _, err := store.UpdateSetting(ctx, domain.NotificationSetting{ID: 999}); !errors.Is(err, domain.ErrSettingNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
