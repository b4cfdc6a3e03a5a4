package quiz

import "strings"

// FilterUnseen returns the questions of pool whose text is not in history.
// Comparison trims whitespace but is otherwise exact. When every question has
// been seen the whole pool is returned: a repeat beats an empty card.
func FilterUnseen(pool []CanonicalQuestion, history []string) []CanonicalQuestion {
	if len(history) == 0 {
		return pool
	}

	seen := make(map[string]struct{}, len(history))
	for _, h := range history {
		seen[strings.TrimSpace(h)] = struct{}{}
	}

	unseen := make([]CanonicalQuestion, 0, len(pool))
	for _, q := range pool {
		if _, ok := seen[strings.TrimSpace(q.Text)]; !ok {
			unseen = append(unseen, q)
		}
	}
	if len(unseen) == 0 {
		return pool
	}
	return unseen
}
