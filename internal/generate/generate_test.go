package generate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/p-n-ai/stemblast/internal/ai"
	"github.com/p-n-ai/stemblast/internal/quiz"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantAnswer  string
		wantOptions int
		wantType    string
		wantEmoji   string
	}{
		{
			name:        "plain json",
			content:     `{"question":"What is 5 + 5?","options":["8","9","10","11"],"correctAnswer":"10","emoji":"➕","type":"math"}`,
			wantAnswer:  "10",
			wantOptions: 4,
			wantType:    "math",
			wantEmoji:   "➕",
		},
		{
			name:        "fenced with letter answer",
			content:     "```json\n{\"question\":\"Q3: Which planet is red?\",\"options\":[\"Venus\",\"Mars\",\"Earth\"],\"correctAnswer\":\"b\"}\n```",
			wantAnswer:  "Mars",
			wantOptions: 3,
			wantType:    "Space & Physics",
			wantEmoji:   quiz.DefaultEmoji,
		},
		{
			name:        "numeric answer and options",
			content:     `{"question":"How many legs does a spider have?","options":[6,8,10,4],"correctAnswer":8,"type":"biology"}`,
			wantAnswer:  "8",
			wantOptions: 4,
			wantType:    "biology",
			wantEmoji:   quiz.DefaultEmoji,
		},
		{
			name:        "answer differs in case",
			content:     `{"question":"Which gas do plants take in?","options":["Oxygen","Carbon dioxide"],"correctAnswer":" carbon DIOXIDE "}`,
			wantAnswer:  "Carbon dioxide",
			wantOptions: 2,
			wantType:    "Space & Physics",
			wantEmoji:   quiz.DefaultEmoji,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.content, "Space & Physics")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if q.CorrectAnswer != tt.wantAnswer {
				t.Errorf("CorrectAnswer = %q, want %q", q.CorrectAnswer, tt.wantAnswer)
			}
			if len(q.Options) != tt.wantOptions {
				t.Errorf("Options = %v, want %d", q.Options, tt.wantOptions)
			}
			if q.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", q.Type, tt.wantType)
			}
			if q.Emoji != tt.wantEmoji {
				t.Errorf("Emoji = %q, want %q", q.Emoji, tt.wantEmoji)
			}
			if strings.HasPrefix(q.Question, "Q3") {
				t.Errorf("enumeration not stripped: %q", q.Question)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "Sure! Here's a question about plants."},
		{"missing options", `{"question":"Why?","correctAnswer":"Because"}`},
		{"too many options", `{"question":"Pick","options":["a","b","c","d","e"],"correctAnswer":"a"}`},
		{"one option", `{"question":"Pick","options":["a"],"correctAnswer":"a"}`},
		{"answer not an option", `{"question":"2+2?","options":["3","5"],"correctAnswer":"4"}`},
		{"duplicate options", `{"question":"2+2?","options":["4","4 "],"correctAnswer":"4"}`},
		{"blank question", `{"question":"  ","options":["a","b"],"correctAnswer":"a"}`},
		{"blank options collapse", `{"question":"Pick","options":["a"," "],"correctAnswer":"a"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.content, "Mathematics")
			if !errors.Is(err, ErrInvalidResponse) {
				t.Fatalf("Parse() error = %v, want ErrInvalidResponse", err)
			}
		})
	}
}

func TestSource_Question(t *testing.T) {
	mock := ai.NewMockProvider(`{"question":"What do bees make?","options":["Milk","Honey","Silk","Wax"],"correctAnswer":"Honey","emoji":"🐝","type":"biology"}`)
	src, err := New(mock, WithModel("gpt-test"), WithHistoryLimit(2))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	src.seed = func() string { return "seed1234" }

	got, err := src.Question(context.Background(), quiz.SelectionCriteria{
		Grade:      "2nd Grade",
		Subject:    "Life Science",
		Difficulty: quiz.Intermediate,
		History:    []string{"oldest", "older", "newest"},
	})
	if err != nil {
		t.Fatalf("Question() error = %v", err)
	}
	if got.CorrectAnswer != "Honey" || got.Emoji != "🐝" {
		t.Errorf("Question() = %+v", got)
	}

	req := mock.LastRequest()
	if req == nil {
		t.Fatal("provider was not called")
	}
	if !req.JSON || req.Model != "gpt-test" {
		t.Errorf("request JSON=%v model=%q", req.JSON, req.Model)
	}
	system, user := req.Messages[0].Content, req.Messages[1].Content
	for _, want := range []string{"2nd Grade", "Life Science", "Intermediate"} {
		if !strings.Contains(system, want) {
			t.Errorf("system prompt missing %q:\n%s", want, system)
		}
	}
	if !strings.Contains(user, "seed1234") {
		t.Errorf("user prompt missing seed:\n%s", user)
	}
	if strings.Contains(user, "oldest") || !strings.Contains(user, "1. older") || !strings.Contains(user, "2. newest") {
		t.Errorf("user prompt should list only the last 2 questions:\n%s", user)
	}
}

func TestSource_Question_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mock    *ai.MockProvider
		history []string
	}{
		{"provider error", &ai.MockProvider{Err: errors.New("boom")}, nil},
		{"bad reply", ai.NewMockProvider("nope"), nil},
		{"repeat", ai.NewMockProvider(`{"question":"Same again?","options":["Yes","No"],"correctAnswer":"Yes"}`), []string{"Same again?"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, _ := New(tt.mock)
			_, err := src.Question(context.Background(), quiz.SelectionCriteria{Grade: "Kindergarten", History: tt.history})
			if err == nil {
				t.Fatal("Question() should fail")
			}

			got := quiz.NewSelector(src).SelectQuestion(context.Background(), quiz.SelectionCriteria{Grade: "Kindergarten", History: tt.history})
			if !got.Placeholder {
				t.Errorf("SelectQuestion() = %+v, want placeholder", got)
			}
		})
	}
}

type slowProvider struct{}

func (slowProvider) Complete(ctx context.Context, _ ai.CompletionRequest) (ai.CompletionResponse, error) {
	<-ctx.Done()
	return ai.CompletionResponse{}, ctx.Err()
}

func (slowProvider) HealthCheck(context.Context) error { return nil }

func TestSource_Timeout(t *testing.T) {
	src, _ := New(slowProvider{}, WithTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := src.Question(context.Background(), quiz.SelectionCriteria{Grade: "1st Grade"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Question() error = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("Question() did not honour the timeout")
	}
}

func TestNew_NilProvider(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("New(nil) should fail")
	}
}

func TestBuildDedup(t *testing.T) {
	if got := buildDedup(nil); got != "None" {
		t.Errorf("buildDedup(nil) = %q, want None", got)
	}
	if got := buildDedup([]string{"a", "b"}); got != "1. a\n2. b" {
		t.Errorf("buildDedup() = %q", got)
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```json\n{}\n```", "{}"},
		{"```\n{}\n```", "{}"},
		{"  {}  ", "{}"},
	}
	for _, tt := range tests {
		if got := stripCodeFences(tt.in); got != tt.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
