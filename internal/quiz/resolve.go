package quiz

import "strings"

// Resolve returns the literal text of q's correct option. RawCorrect may be
// a letter a-d (any case, surrounding spaces ignored) or the option text.
// The result is the option exactly as stored, so callers can compare learner
// answers by plain string equality.
func Resolve(q CanonicalQuestion) (string, error) {
	raw := strings.TrimSpace(q.RawCorrect)
	if raw == "" {
		return "", &AnswerResolutionError{Question: q.Text, RawCorrect: q.RawCorrect, Reason: "empty correct answer"}
	}

	candidate := raw
	if idx, ok := letterIndex(raw); ok && idx < len(q.Options) {
		candidate = q.Options[idx]
	}

	want := foldKey(candidate)
	match := -1
	for i, opt := range q.Options {
		if foldKey(opt) != want {
			continue
		}
		if match >= 0 {
			return "", &AnswerResolutionError{Question: q.Text, RawCorrect: q.RawCorrect, Reason: "answer matches more than one option"}
		}
		match = i
	}
	if match < 0 {
		return "", &AnswerResolutionError{Question: q.Text, RawCorrect: q.RawCorrect, Reason: "answer matches no option"}
	}
	return q.Options[match], nil
}

// Validate checks that q is servable: at least two options and a resolvable
// answer. It returns the resolved answer.
func Validate(q CanonicalQuestion) (string, error) {
	if len(q.Options) < 2 {
		return "", &AnswerResolutionError{Question: q.Text, RawCorrect: q.RawCorrect, Reason: "fewer than two options"}
	}
	return Resolve(q)
}

func letterIndex(s string) (int, bool) {
	switch strings.ToLower(s) {
	case "a":
		return 0, true
	case "b":
		return 1, true
	case "c":
		return 2, true
	case "d":
		return 3, true
	}
	return 0, false
}
