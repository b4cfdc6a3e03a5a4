package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/p-n-ai/stemblast/internal/quiz"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestLocate(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"locate", "Kindergarten"}, []string{"primary:  K_Maths_Easy", "fallback: kindergarten_Maths_Easy"}},
		{[]string{"locate", "3rd Grade", "Space & Physics", "expert"}, []string{"primary:  G3_SpacePhysics_Hard", "fallback: 3rdgrade_SpacePhysics_Hard"}},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("locate error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output %q missing %q", out, want)
				}
			}
		})
	}

	if _, err := run(t, "locate"); err == nil {
		t.Error("locate without a grade should fail")
	}
}

func TestLocate_CatalogTokens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte("subjects:\n  - name: Chemistry\n    token: Chem\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "locate", "--catalog", path, "5th Grade", "Chemistry")
	if err != nil {
		t.Fatalf("locate error = %v", err)
	}
	if !strings.Contains(out, "G5_Chem_Easy") {
		t.Errorf("output = %q, want G5_Chem_Easy", out)
	}
}

func TestPick(t *testing.T) {
	dir := t.TempDir()
	bankCSV := "Question,A,B,Answer\nQ1: Red or blue sky?,Red,Blue,B\nQ2: One or two eyes?,One,Two,Two\n"
	if err := os.WriteFile(filepath.Join(dir, "G2_Science_Easy.csv"), []byte(bankCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "pick", "--dir", dir, "--level", "2nd Grade", "--subject", "Science", "--history", "Red or blue sky?")
	if err != nil {
		t.Fatalf("pick error = %v", err)
	}

	var q quiz.ResolvedQuestion
	if err := json.Unmarshal([]byte(out), &q); err != nil {
		t.Fatalf("pick output not JSON: %q", out)
	}
	if q.Question != "One or two eyes?" || q.CorrectAnswer != "Two" {
		t.Errorf("pick = %+v", q)
	}
}

func TestPick_HistoryWithCommas(t *testing.T) {
	dir := t.TempDir()
	bankCSV := "Question,A,B,Answer\n\"Pick one, please\",Yes,No,A\nSecond question?,Yes,No,B\n"
	if err := os.WriteFile(filepath.Join(dir, "K_Maths_Easy.csv"), []byte(bankCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	for range 20 {
		out, err := run(t, "pick", "--dir", dir, "--history", "Pick one, please")
		if err != nil {
			t.Fatalf("pick error = %v", err)
		}
		var q quiz.ResolvedQuestion
		if err := json.Unmarshal([]byte(out), &q); err != nil {
			t.Fatalf("pick output not JSON: %q", out)
		}
		if q.Question != "Second question?" {
			t.Fatalf("pick = %q, want the unseen question", q.Question)
		}
	}
}

func TestPick_StarterFallback(t *testing.T) {
	out, err := run(t, "pick", "--level", "12th Grade", "--subject", "Earth Science", "--difficulty", "Hard")
	if err != nil {
		t.Fatalf("pick error = %v", err)
	}
	if !strings.Contains(out, "coming soon") {
		t.Errorf("pick for a missing bank should print the placeholder, got %q", out)
	}
}

func TestSeed_RequiresDatabase(t *testing.T) {
	t.Setenv("LEARN_DATABASE_URL", "")
	if _, err := run(t, "seed"); err == nil {
		t.Fatal("seed without a database URL should fail")
	}
}
