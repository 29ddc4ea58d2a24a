package notify

import (
	"fmt"
	"strings"

	"quiz-grading-service/internal/domain"
)

const (
	LocaleUzbek   = "uz"
	LocaleEnglish = "en"
)

type labels struct {
	title     string
	student   string
	score     string
	wrong     string
	questions string
	selected  string
	status    string
	correct   string
	incorrect string
}

var localeLabels = map[string]labels{
	LocaleUzbek: {
		title:     "Test natijasi",
		student:   "Talaba",
		score:     "Natija",
		wrong:     "Xato",
		questions: "Savollar:",
		selected:  "Tanlangan",
		status:    "Holat",
		correct:   "OK (tog'ri)",
		incorrect: "Xato",
	},
	LocaleEnglish: {
		title:     "Test result",
		student:   "Student",
		score:     "Score",
		wrong:     "Wrong",
		questions: "Questions:",
		selected:  "Selected",
		status:    "Status",
		correct:   "OK (correct)",
		incorrect: "Wrong",
	},
}

// FormatSummary renders the attempt as a plain-text message. Unknown locales
// fall back to Uzbek. Answers are listed in submission order.
func FormatSummary(attempt domain.Attempt, locale string) string {
	l, ok := localeLabels[locale]
	if !ok {
		l = localeLabels[LocaleUzbek]
	}

	header := fmt.Sprintf("%s\n%s: %s %s\n%s: %d/%d\n%s: %d\n\n%s",
		l.title,
		l.student, attempt.FirstName, attempt.LastName,
		l.score, attempt.CorrectAnswers, attempt.TotalQuestions,
		l.wrong, attempt.IncorrectAnswers,
		l.questions,
	)

	blocks := make([]string, 0, len(attempt.Answers)+1)
	blocks = append(blocks, header)
	for i, ans := range attempt.Answers {
		status := l.incorrect
		if ans.IsCorrect {
			status = l.correct
		}
		blocks = append(blocks, fmt.Sprintf("%d) %s\n%s: %s\n%s: %s\n",
			i+1, ans.QuestionText,
			l.selected, ans.OptionText,
			l.status, status,
		))
	}
	return strings.Join(blocks, "\n")
}
