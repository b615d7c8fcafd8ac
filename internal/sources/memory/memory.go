// Package memory is an in-process data source backed by CSV files, one per
// relation, for local runs and tests.
package memory

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ledgerview/internal/sources"
)

// ErrTableNotFound is returned when no table with the requested name is loaded.
var ErrTableNotFound = errors.New("table not found")

type Store struct {
	mu     sync.RWMutex
	tables map[string]sources.Table
}

func New() *Store {
	return &Store{tables: map[string]sources.Table{}}
}

// NewFromFiles loads every *.csv file in dir; the table name is the file
// name without extension.
func NewFromFiles(dir string) (*Store, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no csv files in %s", dir)
	}
	s := New()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		t, err := ReadTable(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		s.Put(strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)), t)
	}
	return s, nil
}

// Put replaces the named table.
func (s *Store) Put(name string, t sources.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[strings.ToLower(name)] = t
}

// ReadTable returns a copy of the named table. Names match case-insensitively.
func (s *Store) ReadTable(_ context.Context, name string) (sources.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[strings.ToLower(name)]
	if !ok {
		return sources.Table{}, fmt.Errorf("%s: %w", name, ErrTableNotFound)
	}
	out := sources.Table{Columns: append([]string(nil), t.Columns...), Rows: make([][]string, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out, nil
}

// Names lists the loaded tables.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.tables))
	for n := range s.tables {
		out = append(out, n)
	}
	return out
}

// ReadTable parses a CSV document with a header line. The delimiter is
// sniffed from the header (comma or semicolon) and a UTF-8 BOM is dropped.
// Short rows are padded and long rows truncated to the header width.
func ReadTable(r io.Reader) (sources.Table, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return sources.Table{}, err
	}
	bom := []byte{0xEF, 0xBB, 0xBF}
	if bytes.HasPrefix(head, bom) {
		br.Discard(len(bom))
		head = head[len(bom):]
	}
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if bytes.Count(head, []byte{';'}) > bytes.Count(head, []byte{','}) {
		cr.Comma = ';'
	}
	records, err := cr.ReadAll()
	if err != nil {
		return sources.Table{}, err
	}
	if len(records) == 0 {
		return sources.Table{}, errors.New("empty file")
	}
	t := sources.Table{Columns: records[0]}
	for _, rec := range records[1:] {
		row := make([]string, len(t.Columns))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
