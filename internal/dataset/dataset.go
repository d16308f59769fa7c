// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

// Package dataset reads the tabular file shown under the dashboard.
// The file is displayed as-is: the first row names the columns and no
// schema is enforced.
package dataset

import (
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
	"github.com/xuri/excelize/v2"
)

// ErrNotFound is returned when the dataset file does not exist.
var ErrNotFound = errors.New("dataset not found")

// Table is a loaded dataset.
type Table struct {
	Columns []string
	// Rows are padded or trimmed to len(Columns).
	Rows [][]string
}

// Source is a dataset file on disk.
type Source struct {
	path string
}

// NewSource creates a Source for the file at path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Path returns the configured file path.
func (s *Source) Path() string {
	return s.path
}

// Name returns the file name without directories.
func (s *Source) Name() string {
	return filepath.Base(s.path)
}

// Exists reports whether the dataset file is present.
func (s *Source) Exists() bool {
	if s.path == "" {
		return false
	}
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// Load reads the dataset. A missing file yields ErrNotFound.
func (s *Source) Load() (*Table, error) {
	if !s.Exists() {
		return nil, oops.With("path", s.path).Wrap(ErrNotFound)
	}

	var (
		records [][]string
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(s.path)); ext {
	case ".csv":
		records, err = readCSV(s.path)
	case ".xlsx", ".xlsm":
		records, err = readXLSX(s.path)
	default:
		return nil, oops.Code("DATASET_UNSUPPORTED_FORMAT").
			With("path", s.path).
			With("extension", ext).
			Errorf("unsupported dataset format %q", ext)
	}
	if err != nil {
		return nil, err
	}
	return newTable(records), nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, oops.With("path", path).Wrap(ErrNotFound)
		}
		return nil, oops.Code("DATASET_READ_FAILED").With("path", path).Wrap(err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, oops.Code("DATASET_READ_FAILED").With("path", path).Wrap(err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, oops.Code("DATASET_READ_FAILED").With("path", path).Wrap(err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, oops.Code("DATASET_READ_FAILED").
			With("path", path).
			With("sheet", sheets[0]).
			Wrap(err)
	}
	return rows, nil
}

func newTable(records [][]string) *Table {
	t := &Table{}
	if len(records) == 0 {
		return t
	}
	t.Columns = records[0]
	width := len(t.Columns)
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := make([]string, width)
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	return t
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
