package quiz

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

type field int

const (
	fieldQuestion field = iota
	fieldOptionA
	fieldOptionB
	fieldOptionC
	fieldOptionD
	fieldCorrect
	fieldTopic
)

var optionFields = []field{fieldOptionA, fieldOptionB, fieldOptionC, fieldOptionD}

// headerAliases lists accepted column names per logical field, already in
// folded form. Order matters: the first alias present in a row wins.
var headerAliases = map[field][]string{
	fieldQuestion: {"question", "question text", "questiontext", "question_text", "q", "prompt"},
	fieldOptionA:  optionAliases("a", "1"),
	fieldOptionB:  optionAliases("b", "2"),
	fieldOptionC:  optionAliases("c", "3"),
	fieldOptionD:  optionAliases("d", "4"),
	fieldCorrect: {
		"correct answer", "correct ans", "correctans", "correctanswer",
		"correct_answer", "correct_ans", "correct", "answer", "ans", "key",
	},
	fieldTopic: {"topic", "category", "type"},
}

func optionAliases(letter, number string) []string {
	return []string{
		"option " + letter, "option" + letter, "option_" + letter, "option-" + letter,
		"opt " + letter, "opt" + letter, "choice " + letter, "choice" + letter,
		"option " + number, "option" + number, letter,
	}
}

var enumerationPrefix = regexp.MustCompile(`^[A-Za-z]?\d+[.:]\s*`)

// Normalize maps raw bank rows onto canonical questions. Rows without
// question text are dropped. defaultTopic fills in a missing topic column.
// Answer validity is not checked here; see Resolve.
func Normalize(rows []RawRecord, defaultTopic string) []CanonicalQuestion {
	out := make([]CanonicalQuestion, 0, len(rows))
	for _, row := range rows {
		if q, ok := normalizeRow(row, defaultTopic); ok {
			out = append(out, q)
		}
	}
	return out
}

func normalizeRow(row RawRecord, defaultTopic string) (CanonicalQuestion, bool) {
	cols := foldHeaders(row)

	text := StripEnumeration(lookup(cols, fieldQuestion))
	if text == "" {
		return CanonicalQuestion{}, false
	}

	options := make([]string, 0, len(optionFields))
	for _, f := range optionFields {
		if v := lookup(cols, f); v != "" {
			options = append(options, v)
		}
	}

	topic := lookup(cols, fieldTopic)
	if topic == "" {
		topic = strings.TrimSpace(defaultTopic)
	}

	return CanonicalQuestion{
		Text:       text,
		Options:    options,
		RawCorrect: lookup(cols, fieldCorrect),
		Topic:      topic,
	}, true
}

// StripEnumeration removes a leading "Q12:" or "3." style prefix.
func StripEnumeration(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSpace(enumerationPrefix.ReplaceAllString(s, ""))
}

// foldHeaders indexes a row by folded header. Raw headers are visited in
// sorted order so that colliding headers always resolve the same way.
func foldHeaders(row RawRecord) map[string]string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cols := make(map[string]string, len(row))
	for _, k := range keys {
		fk := foldKey(k)
		if _, seen := cols[fk]; !seen {
			cols[fk] = strings.TrimSpace(row[k])
		}
	}
	return cols
}

func lookup(cols map[string]string, f field) string {
	for _, alias := range headerAliases[f] {
		if v, ok := cols[alias]; ok {
			return v
		}
	}
	return ""
}

// foldKey reduces a header or answer to a comparison key: NFKC, Unicode case
// folding, trimmed, inner whitespace collapsed to single spaces.
func foldKey(s string) string {
	folded := cases.Fold().String(norm.NFKC.String(s))
	return strings.Join(strings.Fields(folded), " ")
}
