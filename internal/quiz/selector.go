package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
)

// Source produces one resolved question for a request. Implementations
// return an error when they have nothing valid to serve.
type Source interface {
	Question(ctx context.Context, c SelectionCriteria) (ResolvedQuestion, error)
}

// BankLoader loads the raw rows of one bank by key.
type BankLoader interface {
	Load(ctx context.Context, key string) ([]RawRecord, error)
}

// Selector turns any Source into a total function: every failure becomes a
// placeholder question instead of an error.
type Selector struct {
	source Source
}

// NewSelector creates a Selector over source.
func NewSelector(source Source) *Selector {
	return &Selector{source: source}
}

// SelectQuestion always returns a well-formed question.
func (s *Selector) SelectQuestion(ctx context.Context, c SelectionCriteria) ResolvedQuestion {
	q, err := s.source.Question(ctx, c)
	if err == nil {
		err = checkResponse(q)
	}
	if err != nil {
		slog.Warn("serving placeholder question",
			"grade", c.Grade,
			"subject", c.Subject,
			"difficulty", c.Difficulty,
			"error", err,
		)
		return Fallback(c)
	}
	return q
}

func checkResponse(q ResolvedQuestion) error {
	if q.Question == "" {
		return errors.New("response has no question text")
	}
	if len(q.Options) < 2 || len(q.Options) > 4 {
		return fmt.Errorf("response has %d options", len(q.Options))
	}
	want := foldKey(q.CorrectAnswer)
	for _, opt := range q.Options {
		if foldKey(opt) == want {
			return nil
		}
	}
	return fmt.Errorf("correct answer %q is not an option", q.CorrectAnswer)
}

// BankSource serves questions from question banks.
type BankSource struct {
	loader  BankLoader
	locator *Locator
	intn    func(n int) int
}

// BankOption configures a BankSource.
type BankOption func(*BankSource)

// WithLocator sets the locator used to derive bank keys.
func WithLocator(l *Locator) BankOption {
	return func(s *BankSource) {
		s.locator = l
	}
}

// WithRand sets the function used to pick a random index in [0, n).
func WithRand(intn func(n int) int) BankOption {
	return func(s *BankSource) {
		s.intn = intn
	}
}

// NewBankSource creates a bank-backed Source.
func NewBankSource(loader BankLoader, opts ...BankOption) *BankSource {
	s := &BankSource{
		loader:  loader,
		locator: defaultLocator,
		intn:    rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Question locates, loads and normalizes the bank for c, then picks one
// unseen question with a resolvable answer.
func (s *BankSource) Question(ctx context.Context, c SelectionCriteria) (ResolvedQuestion, error) {
	key := s.locator.Locate(c.Grade, c.Subject, string(c.Difficulty))

	rows, err := s.load(ctx, key)
	if err != nil {
		return ResolvedQuestion{}, err
	}

	topic := c.Subject
	if topic == "" {
		topic = DefaultSubject
	}
	pool := Normalize(rows, topic)
	if len(pool) == 0 {
		return ResolvedQuestion{}, fmt.Errorf("%w: %s", ErrEmptyBank, key.Primary)
	}

	candidates := FilterUnseen(pool, c.History)
	q, answer, err := s.pick(candidates)
	if errors.Is(err, ErrAllCandidatesMalformed) && len(candidates) < len(pool) {
		// Every unseen question is broken; a valid repeat is still better
		// than a placeholder.
		q, answer, err = s.pick(pool)
	}
	if err != nil {
		return ResolvedQuestion{}, fmt.Errorf("bank %s: %w", key.Primary, err)
	}

	slog.Debug("question selected",
		"bank_key", key.Primary,
		"pool", len(pool),
		"candidates", len(candidates),
	)

	return ResolvedQuestion{
		Question:      q.Text,
		Options:       slices.Clone(q.Options),
		CorrectAnswer: answer,
		Emoji:         DefaultEmoji,
		Type:          q.Topic,
	}, nil
}

func (s *BankSource) load(ctx context.Context, key BankKey) ([]RawRecord, error) {
	rows, err := s.loader.Load(ctx, key.Primary)
	if err == nil {
		return rows, nil
	}
	if !key.HasFallback() || ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBankNotFound, key.Primary, err)
	}

	rows, legacyErr := s.loader.Load(ctx, key.Fallback)
	if legacyErr != nil {
		return nil, fmt.Errorf("%w: %s (legacy %s): %w", ErrBankNotFound, key.Primary, key.Fallback, err)
	}
	slog.Info("bank served from legacy name", "bank_key", key.Primary, "legacy_key", key.Fallback)
	return rows, nil
}

// pick draws uniformly from candidates, discarding malformed records until a
// valid one is found.
func (s *BankSource) pick(candidates []CanonicalQuestion) (CanonicalQuestion, string, error) {
	remaining := slices.Clone(candidates)
	for len(remaining) > 0 {
		i := s.intn(len(remaining))
		q := remaining[i]

		answer, err := Validate(q)
		if err == nil {
			return q, answer, nil
		}
		slog.Debug("skipping malformed question", "error", err)

		remaining[i] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
	}
	return CanonicalQuestion{}, "", ErrAllCandidatesMalformed
}
