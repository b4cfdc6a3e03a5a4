package quiz_test

import (
	"errors"
	"testing"

	"github.com/p-n-ai/stemblast/internal/quiz"
)

var capitals = []string{"Paris", "London", "Rome", "Berlin"}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		options []string
		raw     string
		want    string
	}{
		{"letter", capitals, "B", "London"},
		{"lowercase letter", capitals, "d", "Berlin"},
		{"padded letter", capitals, " b ", "London"},
		{"literal", capitals, "London", "London"},
		{"literal other case", capitals, "  rome ", "Rome"},
		{"letter beyond options is literal", []string{"Yes", "No", "D"}, "D", "D"},
		{"letter maps by position", []string{"C", "A", "B", "D"}, "a", "C"},
		{"emoji literal", []string{"🔴", "🔵", "🟢"}, "🔴", "🔴"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := quiz.Resolve(quiz.CanonicalQuestion{Text: "q", Options: tt.options, RawCorrect: tt.raw})
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name    string
		options []string
		raw     string
	}{
		{"empty", capitals, ""},
		{"blank", capitals, "   "},
		{"no match", capitals, "Madrid"},
		{"letter without option", []string{"Paris", "London"}, "D"},
		{"ambiguous", []string{"Yes", "yes", "No"}, "YES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := quiz.Resolve(quiz.CanonicalQuestion{Text: "q", Options: tt.options, RawCorrect: tt.raw})
			var resErr *quiz.AnswerResolutionError
			if !errors.As(err, &resErr) {
				t.Fatalf("Resolve() error = %v, want *AnswerResolutionError", err)
			}
		})
	}
}

func TestValidate_TooFewOptions(t *testing.T) {
	_, err := quiz.Validate(quiz.CanonicalQuestion{Text: "q", Options: []string{"only"}, RawCorrect: "only"})
	if err == nil {
		t.Fatal("Validate() should reject a single-option question")
	}
}
