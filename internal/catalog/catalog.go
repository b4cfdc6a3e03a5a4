// Package catalog describes the levels, subjects and difficulties the quiz
// offers. A built-in catalog is compiled in; a YAML file may replace any of
// its sections.
package catalog

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/stemblast/internal/quiz"
)

//go:embed default.yaml
var defaultYAML []byte

// Catalog lists what a learner can pick.
type Catalog struct {
	Levels       []string  `yaml:"levels" json:"levels"`
	Subjects     []Subject `yaml:"subjects" json:"subjects"`
	Difficulties []string  `yaml:"difficulties" json:"difficulties"`
}

// Subject is a display name plus the token used in bank keys.
type Subject struct {
	Name  string `yaml:"name" json:"name"`
	Token string `yaml:"token" json:"token"`
	Emoji string `yaml:"emoji,omitempty" json:"emoji,omitempty"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file. Sections missing from the file keep their
// built-in values. An empty path returns Default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	override, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	c := Default()
	if len(override.Levels) > 0 {
		c.Levels = override.Levels
	}
	if len(override.Subjects) > 0 {
		c.Subjects = override.Subjects
	}
	if len(override.Difficulties) > 0 {
		c.Difficulties = override.Difficulties
	}

	slog.Info("catalog loaded",
		"path", path,
		"levels", len(c.Levels),
		"subjects", len(c.Subjects),
	)
	return c, nil
}

func parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}

	for i, s := range c.Subjects {
		s.Name = strings.TrimSpace(s.Name)
		s.Token = strings.TrimSpace(s.Token)
		if s.Name == "" {
			return nil, fmt.Errorf("subject %d has no name", i)
		}
		if s.Token == "" {
			s.Token = strings.Join(strings.Fields(strings.ReplaceAll(s.Name, "&", " ")), "")
		}
		if strings.ContainsAny(s.Token, `_/\ `) {
			return nil, fmt.Errorf("subject %q token %q must not contain '_', '/', '\\' or spaces", s.Name, s.Token)
		}
		c.Subjects[i] = s
	}
	for _, d := range c.Difficulties {
		if quiz.ParseDifficulty(d) != quiz.Difficulty(d) {
			return nil, fmt.Errorf("unknown difficulty %q", d)
		}
	}
	return &c, nil
}

// SubjectTokens maps subject names to bank key tokens, for quiz.NewLocator.
func (c *Catalog) SubjectTokens() map[string]string {
	tokens := make(map[string]string, len(c.Subjects))
	for _, s := range c.Subjects {
		tokens[s.Name] = s.Token
	}
	return tokens
}

// HasLevel reports whether level is offered, ignoring case and surrounding
// whitespace.
func (c *Catalog) HasLevel(level string) bool {
	level = strings.TrimSpace(level)
	for _, l := range c.Levels {
		if strings.EqualFold(l, level) {
			return true
		}
	}
	return false
}
