package domain

import "errors"

var (
	// ErrQuestionNotFound is returned when a referenced question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound is returned when a referenced answer option does not exist.
	ErrOptionNotFound = errors.New("option not found")
	// ErrOptionMismatch is returned when an option is submitted against a question it does not belong to.
	ErrOptionMismatch = errors.New("option does not belong to question")
	// ErrEmptyResponses rejects submissions without any answers.
	ErrEmptyResponses = errors.New("responses must not be empty")
	// ErrAttemptNotFound indicates an unknown attempt id.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrSettingNotFound indicates that no (active) notification setting exists.
	ErrSettingNotFound = errors.New("notification setting not found")
)

// ValidationError is a rejected write naming the rule that was violated.
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

var (
	// ErrTooFewOptions is returned when a question is written with fewer than two options.
	ErrTooFewOptions = &ValidationError{Field: "options", Rule: "min_options", Message: "at least two answer options are required"}
	// ErrNoCorrectOption is returned when none of the options is marked correct.
	ErrNoCorrectOption = &ValidationError{Field: "options", Rule: "correct_option", Message: "at least one option must be correct"}
)

// MinOptions is the smallest option set a well-formed question may have.
const MinOptions = 2

// ValidateOptions enforces the write-time invariants of a question's option set.
func ValidateOptions(options []OptionInput) error {
	if len(options) < MinOptions {
		return ErrTooFewOptions
	}
	for _, opt := range options {
		if opt.IsCorrect {
			return nil
		}
	}
	return ErrNoCorrectOption
}
