package labels

import (
	"github.com/willbeason/ru-go-emotions/pkg/tables"
	"slices"
	"strconv"
	"strings"
)

const (
	// DefaultTextColumn is never scanned for labels, even if an emotion shares
	// its name.
	DefaultTextColumn = tables.RuTextColumn

	// Column holds the encoded label list.
	Column = tables.LabelsColumn
)

// Encoder turns one-hot emotion columns into bracketed ID lists.
type Encoder struct {
	Mapping    IDLabelMap
	TextColumn string
}

// NewEncoder returns an Encoder skipping DefaultTextColumn.
func NewEncoder(mapping IDLabelMap) *Encoder {
	return &Encoder{
		Mapping:    mapping,
		TextColumn: DefaultTextColumn,
	}
}

// Labeled is a table with its Column filled in, plus the IDs behind each
// row's label list.
type Labeled struct {
	Table *tables.Table
	IDs   [][]int
}

// Encode computes the label list of every row of raw. The result keeps every
// column of raw. An existing Column is overwritten, otherwise Column is
// appended. raw is not modified.
func (e *Encoder) Encode(raw *tables.Table) *Labeled {
	reverse := e.Mapping.Reverse()

	// Column index to emotion ID. Only the first column of a repeated name is
	// scanned.
	emotionColumns := make(map[int]int)
	seen := make(map[string]bool)
	for i, name := range raw.Header {
		if name == e.TextColumn || seen[name] {
			continue
		}
		seen[name] = true
		if id, ok := reverse[name]; ok {
			emotionColumns[i] = id
		}
	}

	header := slices.Clone(raw.Header)
	labelsIdx := slices.Index(header, Column)
	if labelsIdx == -1 {
		labelsIdx = len(header)
		header = append(header, Column)
	}

	result := &Labeled{
		Table: &tables.Table{
			Header: header,
			Rows:   make([][]string, len(raw.Rows)),
		},
		IDs: make([][]int, len(raw.Rows)),
	}

	for r, row := range raw.Rows {
		ids := make([]int, 0)
		for i, id := range emotionColumns {
			if i < len(row) && IsSelected(row[i]) {
				ids = append(ids, id)
			}
		}
		slices.Sort(ids)
		ids = slices.Compact(ids)

		out := make([]string, len(header))
		copy(out, row)
		out[labelsIdx] = FormatIDs(ids)

		result.Table.Rows[r] = out
		result.IDs[r] = ids
	}

	return result
}

// IsSelected reports whether an emotion cell counts as set: a decimal number
// equal to 1, or a boolean true. Anything else, including blanks, NaN and hex
// or underscored literals, is unset rather than rejected.
func IsSelected(cell string) bool {
	cell = strings.TrimSpace(cell)
	if strings.EqualFold(cell, "true") {
		return true
	}
	if strings.ContainsAny(cell, "xX_") {
		return false
	}
	v, err := strconv.ParseFloat(cell, 64)
	return err == nil && v == 1
}

// FormatIDs renders ids as "[id1 id2 ...]", or "[]" when empty.
func FormatIDs(ids []int) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(id))
	}
	sb.WriteByte(']')
	return sb.String()
}
