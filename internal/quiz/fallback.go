package quiz

import (
	"fmt"
	"strings"
)

const (
	fallbackEmoji = "🚧"
	fallbackType  = "coming-soon"
	fallbackAck   = "OK, keep playing!"
)

// Fallback builds the placeholder question served when no real content is
// available. Its single option is also its correct answer.
func Fallback(c SelectionCriteria) ResolvedQuestion {
	grade := strings.TrimSpace(c.Grade)
	if grade == "" {
		grade = "your grade"
	}
	subject := strings.TrimSpace(c.Subject)
	if subject == "" {
		subject = DefaultSubject
	}
	difficulty := ParseDifficulty(string(c.Difficulty))

	return ResolvedQuestion{
		Question:      fmt.Sprintf("New %s %s questions for %s are coming soon! Tap below to keep playing.", difficulty, subject, grade),
		Options:       []string{fallbackAck},
		CorrectAnswer: fallbackAck,
		Emoji:         fallbackEmoji,
		Type:          fallbackType,
		Placeholder:   true,
	}
}
