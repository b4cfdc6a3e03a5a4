package bank

import (
	"context"
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/stemblast/internal/quiz"
)

//go:embed starter
var starterFS embed.FS

// extensions are tried in order for each key.
var extensions = []string{".csv", ".xlsx", ".yaml", ".yml"}

// FileStore reads banks named {key}.csv, {key}.xlsx or {key}.yaml from a
// file system. Banks are read on every Load; wrap it in a CachedStore to
// avoid repeated parsing.
type FileStore struct {
	fsys fs.FS
}

// NewFileStore creates a store over fsys.
func NewFileStore(fsys fs.FS) *FileStore {
	return &FileStore{fsys: fsys}
}

// NewDirStore creates a store over a directory on disk.
func NewDirStore(dir string) (*FileStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("bank dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("bank dir %s is not a directory", dir)
	}
	return NewFileStore(os.DirFS(dir)), nil
}

// Starter returns the banks compiled into the binary.
func Starter() *FileStore {
	sub, err := fs.Sub(starterFS, "starter")
	if err != nil {
		panic(err) // embedded path is fixed
	}
	return NewFileStore(sub)
}

func (s *FileStore) Load(ctx context.Context, key string) ([]quiz.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validKey(key) {
		return nil, fmt.Errorf("%w: invalid key %q", ErrNotFound, key)
	}

	for _, ext := range extensions {
		name := key + ext
		f, err := s.fsys.Open(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("open bank %s: %w", name, err)
		}

		rows, err := decode(ext, f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("read bank %s: %w", name, err)
		}
		return rows, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
}

// Keys lists the bank keys available in the store, sorted.
func (s *FileStore) Keys() ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}

	seen := make(map[string]bool)
	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := path.Ext(e.Name())
		if !knownExtension(ext) {
			continue
		}
		key := strings.TrimSuffix(e.Name(), ext)
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func knownExtension(ext string) bool {
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func decode(ext string, r io.Reader) ([]quiz.RawRecord, error) {
	switch ext {
	case ".csv":
		return readCSV(r)
	case ".xlsx":
		return readXLSX(r)
	default:
		return readYAML(r)
	}
}

// readCSV parses a CSV bank. A UTF-8 or UTF-16 byte order mark, as written
// by spreadsheet exports, is honoured and stripped.
func readCSV(r io.Reader) ([]quiz.RawRecord, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	table, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return tableRows(table), nil
}

// readXLSX parses the first worksheet of a workbook.
func readXLSX(r io.Reader) ([]quiz.RawRecord, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = wb.Close() }()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	table, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return tableRows(table), nil
}

// readYAML accepts either a top-level list of rows or a mapping with a
// "questions" list.
func readYAML(r io.Reader) ([]quiz.RawRecord, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if m, ok := doc.(map[string]any); ok {
		doc = m["questions"]
	}
	items, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("parse yaml: expected a list of questions")
	}

	rows := make([]quiz.RawRecord, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		rows = append(rows, recordFromMap(m))
	}
	return rows, nil
}
