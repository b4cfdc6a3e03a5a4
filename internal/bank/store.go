// Package bank loads raw question-bank rows from files, PostgreSQL or a
// cache in front of either.
package bank

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/p-n-ai/stemblast/internal/quiz"
)

// ErrNotFound is returned when no bank exists for a key.
var ErrNotFound = errors.New("bank not found")

// Store loads the rows of one bank. It satisfies quiz.BankLoader.
type Store interface {
	Load(ctx context.Context, key string) ([]quiz.RawRecord, error)
}

// validKey rejects keys that could escape the bank namespace.
func validKey(key string) bool {
	return key != "" && !strings.ContainsAny(key, `/\`) && !strings.Contains(key, "..")
}

// tableRows turns a header row plus data rows into records. Blank rows and
// blank header cells are skipped; short rows read as empty cells.
func tableRows(table [][]string) []quiz.RawRecord {
	if len(table) == 0 {
		return nil
	}
	header := table[0]

	rows := make([]quiz.RawRecord, 0, len(table)-1)
	for _, rec := range table[1:] {
		if blankRow(rec) {
			continue
		}
		row := make(quiz.RawRecord, len(header))
		for i, h := range header {
			if strings.TrimSpace(h) == "" {
				continue
			}
			if _, dup := row[h]; dup {
				continue
			}
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func blankRow(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// stringify renders a decoded scalar as bank text.
func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func recordFromMap(m map[string]any) quiz.RawRecord {
	row := make(quiz.RawRecord, len(m))
	for k, v := range m {
		row[k] = stringify(v)
	}
	return row
}
