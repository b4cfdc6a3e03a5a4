package quiz

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultSubject is used when a request names no subject.
const DefaultSubject = "Mathematics"

// DefaultSubjectTokens is the built-in subject substitution table.
var DefaultSubjectTokens = map[string]string{
	"Mathematics":     "Maths",
	"Math":            "Maths",
	"Space & Physics": "SpacePhysics",
	"Coding & Logic":  "CodingLogic",
	"Life Science":    "LifeScience",
	"Earth Science":   "EarthScience",
}

var gradeNumber = regexp.MustCompile(`\d+`)

// BankKey identifies the bank for one grade/subject/difficulty triple.
// Primary uses the canonical grade token (K, G3); Fallback uses the legacy
// lowercase grade name and is only read when Primary is missing.
type BankKey struct {
	Primary  string
	Fallback string

	GradeToken         string
	FallbackGradeToken string
	SubjectToken       string
	Difficulty         Difficulty
}

// HasFallback reports whether the legacy key differs from the primary one.
func (k BankKey) HasFallback() bool {
	return k.Fallback != "" && k.Fallback != k.Primary
}

// Locator derives bank keys. The zero value uses DefaultSubjectTokens.
type Locator struct {
	subjects map[string]string
}

// NewLocator creates a Locator whose subject table is the defaults plus extra.
// Entries in extra override defaults with the same name.
func NewLocator(extra map[string]string) *Locator {
	subjects := make(map[string]string, len(DefaultSubjectTokens)+len(extra))
	for name, token := range DefaultSubjectTokens {
		subjects[foldKey(name)] = token
	}
	for name, token := range extra {
		subjects[foldKey(name)] = token
	}
	return &Locator{subjects: subjects}
}

var defaultLocator = NewLocator(nil)

// Locate derives a bank key using the default subject table.
func Locate(grade, subject, difficulty string) BankKey {
	return defaultLocator.Locate(grade, subject, difficulty)
}

// Locate derives a bank key. It never fails; whether a bank exists for the
// key is the store's concern.
func (l *Locator) Locate(grade, subject, difficulty string) BankKey {
	if l == nil || l.subjects == nil {
		l = defaultLocator
	}

	gradeToken := GradeToken(grade)
	fallbackGrade := FallbackGradeToken(grade)
	subjectToken := l.SubjectToken(subject)
	diff := ParseDifficulty(difficulty)

	return BankKey{
		Primary:            joinKey(gradeToken, subjectToken, diff),
		Fallback:           joinKey(fallbackGrade, subjectToken, diff),
		GradeToken:         gradeToken,
		FallbackGradeToken: fallbackGrade,
		SubjectToken:       subjectToken,
		Difficulty:         diff,
	}
}

// SubjectToken maps a subject label through the substitution table.
func (l *Locator) SubjectToken(subject string) string {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = DefaultSubject
	}
	if token, ok := l.subjects[foldKey(subject)]; ok {
		return token
	}
	return subject
}

// GradeToken returns K for Kindergarten, G{n} for any label containing a
// number, and the trimmed label otherwise.
func GradeToken(grade string) string {
	grade = strings.TrimSpace(grade)
	if strings.EqualFold(grade, "Kindergarten") {
		return "K"
	}
	if m := gradeNumber.FindString(grade); m != "" {
		n, err := strconv.Atoi(m)
		if err == nil {
			return "G" + strconv.Itoa(n)
		}
	}
	return grade
}

// FallbackGradeToken returns the legacy grade token: the lowercase grade
// name with whitespace removed.
func FallbackGradeToken(grade string) string {
	return strings.Join(strings.Fields(strings.ToLower(grade)), "")
}

func joinKey(grade, subject string, d Difficulty) string {
	return grade + "_" + subject + "_" + string(d)
}
