package http

import (
	"strings"

	"quiz-grading-service/internal/domain"
)

type optionRequest struct {
	Text      string `json:"text" validate:"required,max=255"`
	IsCorrect bool   `json:"is_correct"`
}

type questionRequest struct {
	Text    string          `json:"text" validate:"required"`
	Options []optionRequest `json:"options" validate:"required,dive"`
}

// questionPatchRequest leaves omitted fields untouched.
type questionPatchRequest struct {
	Text    *string         `json:"text" validate:"omitnil,min=1"`
	Options []optionRequest `json:"options" validate:"omitempty,dive"`
}

func optionInputs(in []optionRequest) []domain.OptionInput {
	if in == nil {
		return nil
	}
	out := make([]domain.OptionInput, 0, len(in))
	for _, o := range in {
		out = append(out, domain.OptionInput{Text: o.Text, IsCorrect: o.IsCorrect})
	}
	return out
}

type responseRequest struct {
	Question int64 `json:"question" validate:"required,gt=0"`
	Option   int64 `json:"option" validate:"required,gt=0"`
}

type submissionRequest struct {
	FirstName string            `json:"first_name" validate:"required,notblank,max=120"`
	LastName  string            `json:"last_name" validate:"required,notblank,max=120"`
	Responses []responseRequest `json:"responses" validate:"required,dive"`
}

func (r submissionRequest) toDomain() domain.Submission {
	sub := domain.Submission{
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		Responses: make([]domain.Response, 0, len(r.Responses)),
	}
	for _, resp := range r.Responses {
		sub.Responses = append(sub.Responses, domain.Response{QuestionID: resp.Question, OptionID: resp.Option})
	}
	return sub
}

type settingRequest struct {
	BotToken    *string `json:"bot_token" validate:"omitempty,max=255"`
	AdminChatID *string `json:"admin_chat_id" validate:"omitempty,max=100"`
	IsActive    *bool   `json:"is_active"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
