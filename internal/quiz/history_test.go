package quiz_test

import (
	"testing"

	"github.com/p-n-ai/stemblast/internal/quiz"
)

func pool(texts ...string) []quiz.CanonicalQuestion {
	out := make([]quiz.CanonicalQuestion, len(texts))
	for i, text := range texts {
		out[i] = quiz.CanonicalQuestion{Text: text, Options: []string{"1", "2"}, RawCorrect: "A"}
	}
	return out
}

func TestFilterUnseen(t *testing.T) {
	tests := []struct {
		name    string
		pool    []quiz.CanonicalQuestion
		history []string
		want    []string
	}{
		{"no history", pool("a", "b"), nil, []string{"a", "b"}},
		{"one seen", pool("a", "b", "c"), []string{"b"}, []string{"a", "c"}},
		{"trimmed history", pool("a", "b"), []string{"  a "}, []string{"b"}},
		{"case sensitive", pool("Apple", "b"), []string{"apple"}, []string{"Apple", "b"}},
		{"all seen returns pool", pool("a", "b"), []string{"a", "b"}, []string{"a", "b"}},
		{"unknown history", pool("a"), []string{"z"}, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := quiz.FilterUnseen(tt.pool, tt.history)
			if len(got) != len(tt.want) {
				t.Fatalf("FilterUnseen() = %d questions, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Text != tt.want[i] {
					t.Errorf("FilterUnseen()[%d] = %q, want %q", i, got[i].Text, tt.want[i])
				}
			}
		})
	}
}

func TestRecentHistory(t *testing.T) {
	h := []string{"a", "b", "c", "d"}
	if got := quiz.RecentHistory(h, 2); len(got) != 2 || got[0] != "c" || got[1] != "d" {
		t.Errorf("RecentHistory(h, 2) = %v, want [c d]", got)
	}
	if got := quiz.RecentHistory(h, 0); len(got) != 4 {
		t.Errorf("RecentHistory(h, 0) = %v, want unbounded", got)
	}
}
