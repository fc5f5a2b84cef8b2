package tables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// ErrSchemaMismatch is returned when a projection asks for a column a row
// does not have.
var ErrSchemaMismatch = errors.New("schema mismatch")

const utf8BOM = "\uFEFF"

// Table is a delimited text table held in memory. Every row has one cell per
// header column.
type Table struct {
	Header []string
	Rows   [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the index of the first column called name, or -1.
func (t *Table) Column(name string) int {
	return slices.Index(t.Header, name)
}

// Project returns a new Table holding exactly columns, in that order.
func (t *Table) Project(columns []string) (*Table, error) {
	indices := make([]int, len(columns))
	for i, name := range columns {
		idx := t.Column(name)
		if idx == -1 {
			return nil, fmt.Errorf("%w: column %q not in header %v", ErrSchemaMismatch, name, t.Header)
		}
		indices[i] = idx
	}

	result := &Table{
		Header: slices.Clone(columns),
		Rows:   make([][]string, len(t.Rows)),
	}
	for r, row := range t.Rows {
		projected := make([]string, len(indices))
		for i, idx := range indices {
			if idx >= len(row) {
				return nil, fmt.Errorf("%w: row %d has no column %q", ErrSchemaMismatch, r+1, columns[i])
			}
			projected[i] = row[idx]
		}
		result.Rows[r] = projected
	}

	return result, nil
}

// ReadCSV reads a comma-delimited table whose first record is the header.
// Short rows are padded with empty cells. Rows wider than the header are an
// error.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("reading header: no header row")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	t := &Table{Header: header}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// The header is line 1.
			return nil, fmt.Errorf("reading row %d: %w", len(t.Rows)+1, err)
		}
		if len(row) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("reading row %d: line %d has %d fields, header has %d",
				len(t.Rows)+1, line, len(row), len(header))
		}
		for len(row) < len(header) {
			row = append(row, "")
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// WriteCSV writes t with a header record and "\n" line endings. Equal tables
// always produce identical bytes.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)

	err := writer.Write(t.Header)
	if err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range t.Rows {
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
