package quiz

import (
	"errors"
	"fmt"
)

var (
	// ErrBankNotFound means neither the primary nor the fallback bank resolved.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrEmptyBank means the bank loaded but produced no usable rows.
	ErrEmptyBank = errors.New("question bank is empty")
	// ErrAllCandidatesMalformed means no candidate had a resolvable answer.
	ErrAllCandidatesMalformed = errors.New("all candidate questions are malformed")
)

// AnswerResolutionError reports a record whose correct answer cannot be
// mapped onto exactly one of its options.
type AnswerResolutionError struct {
	Question   string
	RawCorrect string
	Reason     string
}

func (e *AnswerResolutionError) Error() string {
	return fmt.Sprintf("resolve answer %q for %q: %s", e.RawCorrect, e.Question, e.Reason)
}
