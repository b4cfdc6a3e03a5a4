// Package generate produces quiz questions with a language model. Replies
// are schema-checked and their answers resolved the same way bank rows are,
// so a generated question obeys the same guarantees as a stored one.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/p-n-ai/stemblast/internal/ai"
	"github.com/p-n-ai/stemblast/internal/quiz"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultHistoryLimit = 20
	maxTokens           = 400
	temperature         = 0.9
)

// ErrInvalidResponse is returned when the model's reply cannot be served.
var ErrInvalidResponse = errors.New("invalid generated question")

const responseSchema = `{
  "type": "object",
  "required": ["question", "options", "correctAnswer"],
  "properties": {
    "question": {"type": "string", "minLength": 1},
    "options": {
      "type": "array",
      "minItems": 2,
      "maxItems": 4,
      "items": {"type": ["string", "number"]}
    },
    "correctAnswer": {"type": ["string", "number"]},
    "emoji": {"type": "string"},
    "type": {"type": "string"}
  }
}`

var compiledSchema = mustSchema(responseSchema)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("generate: bad response schema: %v", err))
	}
	return schema
}

// generated is the JSON shape the model is asked for.
type generated struct {
	Question      string `json:"question"`
	Options       []any  `json:"options"`
	CorrectAnswer any    `json:"correctAnswer"`
	Emoji         string `json:"emoji"`
	Type          string `json:"type"`
}

// Source implements quiz.Source on top of an AI provider.
type Source struct {
	provider     ai.Provider
	model        string
	timeout      time.Duration
	historyLimit int
	seed         func() string
}

// Option configures a Source.
type Option func(*Source)

// WithModel sets the model requested from the provider.
func WithModel(model string) Option {
	return func(s *Source) { s.model = model }
}

// WithTimeout bounds each generation call.
func WithTimeout(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithHistoryLimit sets how many recent questions are listed in the prompt.
func WithHistoryLimit(n int) Option {
	return func(s *Source) { s.historyLimit = n }
}

// New creates a generative source.
func New(provider ai.Provider, opts ...Option) (*Source, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is nil")
	}
	s := &Source{
		provider:     provider,
		timeout:      defaultTimeout,
		historyLimit: defaultHistoryLimit,
		seed:         func() string { return uuid.NewString()[:8] },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Question asks the model for one question matching c.
func (s *Source) Question(ctx context.Context, c quiz.SelectionCriteria) (quiz.ResolvedQuestion, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	recent := quiz.RecentHistory(c.History, s.historyLimit)
	resp, err := s.provider.Complete(ctx, ai.CompletionRequest{
		Messages:    buildMessages(c, recent, s.seed()),
		Model:       s.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		JSON:        true,
	})
	if err != nil {
		return quiz.ResolvedQuestion{}, fmt.Errorf("generate question: %w", err)
	}

	slog.Debug("question generated",
		"provider", resp.Provider,
		"model", resp.Model,
		"tokens", resp.TotalTokens(),
	)

	q, err := Parse(resp.Content, c.Subject)
	if err != nil {
		slog.Warn("discarding generated question",
			"provider", resp.Provider,
			"model", resp.Model,
			"error", err,
		)
		return quiz.ResolvedQuestion{}, err
	}

	for _, seen := range recent {
		if strings.TrimSpace(seen) == q.Question {
			return quiz.ResolvedQuestion{}, fmt.Errorf("%w: repeated a recent question", ErrInvalidResponse)
		}
	}
	return q, nil
}

// Parse turns a model reply into a servable question. defaultTopic fills a
// missing type.
func Parse(content, defaultTopic string) (quiz.ResolvedQuestion, error) {
	body := stripCodeFences(content)

	result, err := compiledSchema.Validate(gojsonschema.NewStringLoader(body))
	if err != nil {
		return quiz.ResolvedQuestion{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return quiz.ResolvedQuestion{}, fmt.Errorf("%w: %s", ErrInvalidResponse, strings.Join(msgs, "; "))
	}

	var g generated
	if err := json.Unmarshal([]byte(body), &g); err != nil {
		return quiz.ResolvedQuestion{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	options := make([]string, 0, len(g.Options))
	for _, o := range g.Options {
		if text := strings.TrimSpace(scalar(o)); text != "" {
			options = append(options, text)
		}
	}

	topic := strings.TrimSpace(g.Type)
	if topic == "" {
		topic = strings.TrimSpace(defaultTopic)
	}
	if topic == "" {
		topic = quiz.DefaultSubject
	}

	cq := quiz.CanonicalQuestion{
		Text:       quiz.StripEnumeration(g.Question),
		Options:    options,
		RawCorrect: scalar(g.CorrectAnswer),
		Topic:      topic,
	}
	if cq.Text == "" {
		return quiz.ResolvedQuestion{}, fmt.Errorf("%w: empty question", ErrInvalidResponse)
	}
	answer, err := quiz.Validate(cq)
	if err != nil {
		return quiz.ResolvedQuestion{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	emoji := strings.TrimSpace(g.Emoji)
	if emoji == "" {
		emoji = quiz.DefaultEmoji
	}

	return quiz.ResolvedQuestion{
		Question:      cq.Text,
		Options:       cq.Options,
		CorrectAnswer: answer,
		Emoji:         emoji,
		Type:          cq.Topic,
	}, nil
}

// scalar renders a JSON string or number as text.
func scalar(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
