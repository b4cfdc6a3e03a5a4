// Package quiz resolves one multiple-choice question per request from a
// question bank: locate, normalize, de-duplicate, pick and resolve.
package quiz

import "strings"

// DefaultEmoji is shown on every bank-sourced question card.
const DefaultEmoji = "🚀"

// Difficulty is the requested difficulty band.
type Difficulty string

const (
	Easy         Difficulty = "Easy"
	Intermediate Difficulty = "Intermediate"
	Hard         Difficulty = "Hard"
)

// ParseDifficulty maps a free-form label onto a Difficulty.
// "Expert" is an alias for Hard; anything unrecognized is Easy.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "intermediate":
		return Intermediate
	case "hard", "expert":
		return Hard
	default:
		return Easy
	}
}

// RawRecord is one row of a question bank as loaded from an external source.
// Keys are column headers exactly as authored.
type RawRecord map[string]string

// CanonicalQuestion is a bank row after header normalization.
type CanonicalQuestion struct {
	Text       string
	Options    []string
	RawCorrect string
	Topic      string
}

// SelectionCriteria is what a learner asks for.
type SelectionCriteria struct {
	Grade      string
	Subject    string
	Difficulty Difficulty
	// History holds previously served question texts, most recent last.
	History []string
}

// ResolvedQuestion is the response shape consumed by the client.
type ResolvedQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Emoji         string   `json:"emoji"`
	Type          string   `json:"type"`

	// Placeholder is set on fallback responses.
	Placeholder bool `json:"-"`
}

// RecentHistory returns at most the last n entries of history.
func RecentHistory(history []string, n int) []string {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
