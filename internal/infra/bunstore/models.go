package bunstore

import (
	"time"

	"quiz-grading-service/internal/domain"

	"github.com/uptrace/bun"
)

type questionModel struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

	ID        int64          `bun:"id,pk,autoincrement"`
	Text      string         `bun:"text,notnull"`
	CreatedAt time.Time      `bun:"created_at,notnull"`
	UpdatedAt time.Time      `bun:"updated_at,notnull"`
	Options   []*optionModel `bun:"rel:has-many,join:id=question_id"`
}

type optionModel struct {
	bun.BaseModel `bun:"table:answer_options,alias:o"`

	ID         int64  `bun:"id,pk,autoincrement"`
	QuestionID int64  `bun:"question_id,notnull"`
	Text       string `bun:"text,notnull"`
	IsCorrect  bool   `bun:"is_correct,notnull"`
}

type attemptModel struct {
	bun.BaseModel `bun:"table:test_attempts,alias:ta"`

	ID               int64     `bun:"id,pk,autoincrement"`
	FirstName        string    `bun:"first_name,notnull"`
	LastName         string    `bun:"last_name,notnull"`
	TotalQuestions   int       `bun:"total_questions,notnull"`
	CorrectAnswers   int       `bun:"correct_answers,notnull"`
	IncorrectAnswers int       `bun:"incorrect_answers,notnull"`
	CreatedAt        time.Time `bun:"created_at,notnull"`
}

type answerModel struct {
	bun.BaseModel `bun:"table:attempt_answers,alias:aa"`

	ID               int64 `bun:"id,pk,autoincrement"`
	AttemptID        int64 `bun:"attempt_id,notnull"`
	QuestionID       int64 `bun:"question_id,notnull"`
	SelectedOptionID int64 `bun:"selected_option_id,notnull"`
	IsCorrect        bool  `bun:"is_correct,notnull"`
}

// answerRow is an attempt answer joined with the current question and option texts.
type answerRow struct {
	ID               int64  `bun:"id"`
	AttemptID        int64  `bun:"attempt_id"`
	QuestionID       int64  `bun:"question_id"`
	QuestionText     string `bun:"question_text"`
	SelectedOptionID int64  `bun:"selected_option_id"`
	OptionText       string `bun:"option_text"`
	IsCorrect        bool   `bun:"is_correct"`
}

type settingModel struct {
	bun.BaseModel `bun:"table:notification_settings,alias:ns"`

	ID          int64     `bun:"id,pk,autoincrement"`
	BotToken    string    `bun:"bot_token,notnull"`
	AdminChatID string    `bun:"admin_chat_id,notnull"`
	IsActive    bool      `bun:"is_active,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

func (m *questionModel) toDomain() domain.Question {
	q := domain.Question{
		ID:        m.ID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		Options:   make([]domain.Option, 0, len(m.Options)),
	}
	for _, o := range m.Options {
		q.Options = append(q.Options, o.toDomain())
	}
	return q
}

func (m *optionModel) toDomain() domain.Option {
	return domain.Option{ID: m.ID, QuestionID: m.QuestionID, Text: m.Text, IsCorrect: m.IsCorrect}
}

func (m *attemptModel) toDomain() domain.Attempt {
	return domain.Attempt{
		ID:               m.ID,
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		TotalQuestions:   m.TotalQuestions,
		CorrectAnswers:   m.CorrectAnswers,
		IncorrectAnswers: m.IncorrectAnswers,
		CreatedAt:        m.CreatedAt,
	}
}

func (r answerRow) toDomain() domain.AttemptAnswer {
	return domain.AttemptAnswer{
		ID:               r.ID,
		AttemptID:        r.AttemptID,
		QuestionID:       r.QuestionID,
		QuestionText:     r.QuestionText,
		SelectedOptionID: r.SelectedOptionID,
		OptionText:       r.OptionText,
		IsCorrect:        r.IsCorrect,
	}
}

func (m *settingModel) toDomain() domain.NotificationSetting {
	return domain.NotificationSetting{
		ID:          m.ID,
		BotToken:    m.BotToken,
		AdminChatID: m.AdminChatID,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func settingFromDomain(s domain.NotificationSetting) *settingModel {
	return &settingModel{
		ID:          s.ID,
		BotToken:    s.BotToken,
		AdminChatID: s.AdminChatID,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
