package domain

import "time"

// Option is one selectable answer of a question.
type Option struct {
	ID         int64
	QuestionID int64
	Text       string
	IsCorrect  bool
}

// Question is a multiple-choice question. Options are ordered by creation.
type Question struct {
	ID        int64
	Text      string
	Options   []Option
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OptionInput describes an option to be created together with its question.
type OptionInput struct {
	Text      string
	IsCorrect bool
}

// QuestionInput is the full write model of a question.
type QuestionInput struct {
	Text    string
	Options []OptionInput
}

// QuestionPatch updates a question partially. A nil Text keeps the current
// text; a nil Options keeps the current option set, anything else replaces it.
type QuestionPatch struct {
	Text    *string
	Options []OptionInput
}

// NotificationSetting holds the Telegram delivery configuration.
type NotificationSetting struct {
	ID          int64
	BotToken    string
	AdminChatID string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SettingPatch is a partial update of NotificationSetting; nil fields are left untouched.
type SettingPatch struct {
	BotToken    *string
	AdminChatID *string
	IsActive    *bool
}

// Apply copies the non-nil fields of the patch onto s.
func (p SettingPatch) Apply(s *NotificationSetting) {
	if p.BotToken != nil {
		s.BotToken = *p.BotToken
	}
	if p.AdminChatID != nil {
		s.AdminChatID = *p.AdminChatID
	}
	if p.IsActive != nil {
		s.IsActive = *p.IsActive
	}
}

// Complete reports whether the setting carries everything needed to deliver a message.
func (s NotificationSetting) Complete() bool {
	return s.BotToken != "" && s.AdminChatID != ""
}

// Response is one (question, option) pair of a submission.
type Response struct {
	QuestionID int64
	OptionID   int64
}

// Submission is a batch of answers sent by an anonymous test taker.
type Submission struct {
	FirstName string
	LastName  string
	Responses []Response
}

// AttemptAnswer is the graded record of one response. IsCorrect is a snapshot
// of the option's flag at grading time.
type AttemptAnswer struct {
	ID               int64
	AttemptID        int64
	QuestionID       int64
	QuestionText     string
	SelectedOptionID int64
	OptionText       string
	IsCorrect        bool
}

// Attempt is one graded submission.
type Attempt struct {
	ID               int64
	FirstName        string
	LastName         string
	TotalQuestions   int
	CorrectAnswers   int
	IncorrectAnswers int
	CreatedAt        time.Time
	Answers          []AttemptAnswer
}

// Tally recomputes the aggregate counters from the answers.
func (a *Attempt) Tally() {
	correct := 0
	for _, ans := range a.Answers {
		if ans.IsCorrect {
			correct++
		}
	}
	a.TotalQuestions = len(a.Answers)
	a.CorrectAnswers = correct
	a.IncorrectAnswers = len(a.Answers) - correct
}

// Delivery reports the outcome of a best-effort notification.
type Delivery struct {
	Sent   bool
	Reason string
}
