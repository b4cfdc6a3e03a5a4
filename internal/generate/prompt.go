package generate

import (
	"fmt"
	"strings"

	"github.com/p-n-ai/stemblast/internal/ai"
	"github.com/p-n-ai/stemblast/internal/quiz"
)

const systemPrompt = `You are a STEM teacher. Generate a UNIQUE, fun, multiple-choice question for a %s learner.
Subject: %s. Difficulty: %s.
Keep the wording short and friendly for that age. Give 4 options with exactly one correct answer.
Return ONLY valid JSON in this format: {"question": "...", "options": ["...", "...", "...", "..."], "correctAnswer": "...", "emoji": "...", "type": "..."}
"correctAnswer" must be copied exactly from "options". "emoji" is a single emoji matching the question. "type" is a short topic label.`

// buildMessages assembles the chat for one question. recent lists question
// texts the learner has already seen, oldest first.
func buildMessages(c quiz.SelectionCriteria, recent []string, seed string) []ai.Message {
	subject := strings.TrimSpace(c.Subject)
	if subject == "" {
		subject = quiz.DefaultSubject
	}
	difficulty := c.Difficulty
	if difficulty == "" {
		difficulty = quiz.Easy
	}

	user := fmt.Sprintf("Generate a new question. Random seed: %s\n\nDo not repeat any of these recent questions:\n%s",
		seed, buildDedup(recent))

	return []ai.Message{
		{Role: "system", Content: fmt.Sprintf(systemPrompt, strings.TrimSpace(c.Grade), subject, difficulty)},
		{Role: "user", Content: user},
	}
}

// buildDedup renders recent questions as a numbered list.
func buildDedup(recent []string) string {
	if len(recent) == 0 {
		return "None"
	}
	var b strings.Builder
	for i, q := range recent {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}

// stripCodeFences removes a surrounding ``` or ```json fence.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```json"))
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
