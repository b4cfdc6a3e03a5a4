package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/p-n-ai/stemblast/internal/catalog"
	"github.com/p-n-ai/stemblast/internal/quiz"
)

func TestDefault(t *testing.T) {
	c := catalog.Default()

	if len(c.Levels) != 13 || c.Levels[0] != "Kindergarten" || c.Levels[12] != "12th Grade" {
		t.Errorf("Levels = %v, want Kindergarten..12th Grade", c.Levels)
	}
	if len(c.Difficulties) != 3 {
		t.Errorf("Difficulties = %v, want 3", c.Difficulties)
	}

	// Built-in tokens agree with the locator's defaults.
	for name, token := range quiz.DefaultSubjectTokens {
		if name == "Math" {
			continue
		}
		if got := c.SubjectTokens()[name]; got != token {
			t.Errorf("SubjectTokens()[%q] = %q, want %q", name, got, token)
		}
	}
}

func TestDefault_IsACopy(t *testing.T) {
	a := catalog.Default()
	a.Levels[0] = "changed"
	if catalog.Default().Levels[0] != "Kindergarten" {
		t.Error("Default() should not share state between calls")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `
subjects:
  - name: Chemistry
    token: Chem
  - name: Robotics & Control
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(c.Levels) != 13 {
		t.Errorf("Levels should keep built-in values, got %v", c.Levels)
	}
	tokens := c.SubjectTokens()
	if tokens["Chemistry"] != "Chem" || tokens["Robotics & Control"] != "RoboticsControl" {
		t.Errorf("SubjectTokens() = %v", tokens)
	}

	key := quiz.NewLocator(tokens).Locate("5th Grade", "chemistry", "hard")
	if key.Primary != "G5_Chem_Hard" {
		t.Errorf("Primary = %q, want G5_Chem_Hard", key.Primary)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "levels: [unterminated"},
		{"subject without name", "subjects:\n  - token: X\n"},
		{"token with underscore", "subjects:\n  - name: Fun Maths\n    token: Fun_Maths\n"},
		{"unknown difficulty", "difficulties: [Easy, Impossible]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalog.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := catalog.Load(path); err == nil {
				t.Fatal("Load() should fail")
			}
		})
	}

	if _, err := catalog.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	c, err := catalog.Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if !c.HasLevel(" kindergarten ") {
		t.Error("HasLevel() should match case-insensitively")
	}
	if c.HasLevel("13th Grade") {
		t.Error("HasLevel() matched an unknown level")
	}
}
