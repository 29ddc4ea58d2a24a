package http

import (
	"time"

	"quiz-grading-service/internal/domain"
)

// Questions are rendered through one of two projections. The public one has
// no is_correct field at all, so correctness cannot leak to anonymous callers.

type publicOptionView struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type adminOptionView struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type publicQuestionView struct {
	ID      int64              `json:"id"`
	Text    string             `json:"text"`
	Options []publicOptionView `json:"options"`
}

type adminQuestionView struct {
	ID      int64             `json:"id"`
	Text    string            `json:"text"`
	Options []adminOptionView `json:"options"`
}

func newPublicQuestionView(q domain.Question) publicQuestionView {
	v := publicQuestionView{ID: q.ID, Text: q.Text, Options: make([]publicOptionView, 0, len(q.Options))}
	for _, o := range q.Options {
		v.Options = append(v.Options, publicOptionView{ID: o.ID, Text: o.Text})
	}
	return v
}

func newAdminQuestionView(q domain.Question) adminQuestionView {
	v := adminQuestionView{ID: q.ID, Text: q.Text, Options: make([]adminOptionView, 0, len(q.Options))}
	for _, o := range q.Options {
		v.Options = append(v.Options, adminOptionView{ID: o.ID, Text: o.Text, IsCorrect: o.IsCorrect})
	}
	return v
}

// questionView picks the projection for the caller.
func questionView(q domain.Question, admin bool) interface{} {
	if admin {
		return newAdminQuestionView(q)
	}
	return newPublicQuestionView(q)
}

func questionViews(qs []domain.Question, admin bool) interface{} {
	if admin {
		out := make([]adminQuestionView, 0, len(qs))
		for _, q := range qs {
			out = append(out, newAdminQuestionView(q))
		}
		return out
	}
	out := make([]publicQuestionView, 0, len(qs))
	for _, q := range qs {
		out = append(out, newPublicQuestionView(q))
	}
	return out
}

type attemptAnswerView struct {
	ID             int64  `json:"id"`
	Question       int64  `json:"question"`
	QuestionText   string `json:"question_text"`
	SelectedOption int64  `json:"selected_option"`
	OptionText     string `json:"option_text"`
	IsCorrect      bool   `json:"is_correct"`
}

type attemptView struct {
	ID               int64               `json:"id"`
	FirstName        string              `json:"first_name"`
	LastName         string              `json:"last_name"`
	TotalQuestions   int                 `json:"total_questions"`
	CorrectAnswers   int                 `json:"correct_answers"`
	IncorrectAnswers int                 `json:"incorrect_answers"`
	CreatedAt        time.Time           `json:"created_at"`
	Answers          []attemptAnswerView `json:"answers"`
}

func newAttemptView(a domain.Attempt) attemptView {
	v := attemptView{
		ID:               a.ID,
		FirstName:        a.FirstName,
		LastName:         a.LastName,
		TotalQuestions:   a.TotalQuestions,
		CorrectAnswers:   a.CorrectAnswers,
		IncorrectAnswers: a.IncorrectAnswers,
		CreatedAt:        a.CreatedAt,
		Answers:          make([]attemptAnswerView, 0, len(a.Answers)),
	}
	for _, ans := range a.Answers {
		v.Answers = append(v.Answers, attemptAnswerView{
			ID:             ans.ID,
			Question:       ans.QuestionID,
			QuestionText:   ans.QuestionText,
			SelectedOption: ans.SelectedOptionID,
			OptionText:     ans.OptionText,
			IsCorrect:      ans.IsCorrect,
		})
	}
	return v
}

type settingView struct {
	BotToken    string `json:"bot_token"`
	AdminChatID string `json:"admin_chat_id"`
	IsActive    bool   `json:"is_active"`
}

func newSettingView(s domain.NotificationSetting) settingView {
	return settingView{BotToken: s.BotToken, AdminChatID: s.AdminChatID, IsActive: s.IsActive}
}
