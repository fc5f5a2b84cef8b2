package tables

import (
	"compress/gzip"
	"fmt"
	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/compress"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"io"
)

const (
	TextColumn   = "text"
	RuTextColumn = "ru_text"
	LabelsColumn = "labels"
	IDColumn     = "id"

	ParquetExt = ".parquet"

	trainingTableComment = "Emotion training rows with labels encoded as emotion IDs"
)

// TrainingColumns is the column order of the final training table.
var TrainingColumns = []string{RuTextColumn, TextColumn, LabelsColumn, IDColumn}

var columnComments = map[string]string{
	RuTextColumn: "The Russian translation of the text",
	TextColumn:   "The original English text",
	LabelsColumn: "The IDs of every emotion present in the text, in ascending order",
	IDColumn:     "The identifier of the row in the source dataset",
}

// TrainingSchema returns the Arrow schema of a final table with the given
// columns. LabelsColumn is a list of IDs and every other column is a string.
func TrainingSchema(columns []string) *arrow.Schema {
	fields := make([]arrow.Field, len(columns))
	for i, name := range columns {
		fields[i] = arrow.Field{
			Name:     name,
			Type:     arrow.BinaryTypes.String,
			Metadata: comment(columnComments[name]),
		}
		if name == LabelsColumn {
			fields[i].Type = arrow.ListOf(arrow.PrimitiveTypes.Int64)
		}
	}

	schemaMetadata := comment(trainingTableComment)
	return arrow.NewSchema(fields, &schemaMetadata)
}

// WriteParquet writes t as a gzip-compressed Parquet file. ids holds the label
// IDs of each row and fills LabelsColumn.
func WriteParquet(w io.Writer, t *Table, ids [][]int) error {
	if len(ids) != len(t.Rows) {
		return fmt.Errorf("got label ids for %d rows, table has %d rows", len(ids), len(t.Rows))
	}

	schema := TrainingSchema(t.Header)

	allocator := memory.NewGoAllocator()
	recordBuilder := array.NewRecordBuilder(allocator, schema)
	defer recordBuilder.Release()

	for r, row := range t.Rows {
		for c := range t.Header {
			switch field := recordBuilder.Field(c).(type) {
			case *array.ListBuilder:
				field.Append(true)
				values := field.ValueBuilder().(*array.Int64Builder)
				for _, id := range ids[r] {
					values.Append(int64(id))
				}
			case *array.StringBuilder:
				field.Append(row[c])
			default:
				return fmt.Errorf("unsupported builder %T for column %q", field, t.Header[c])
			}
		}
	}

	record := recordBuilder.NewRecord()
	defer record.Release()

	writer, err := pqarrow.NewFileWriter(
		schema,
		w,
		parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Gzip),
			parquet.WithCompressionLevel(gzip.BestCompression)),
		pqarrow.DefaultWriterProps(),
	)
	if err != nil {
		return fmt.Errorf("creating parquet writer: %w", err)
	}

	err = writer.Write(record)
	if err != nil {
		_ = writer.Close()
		return fmt.Errorf("writing records: %w", err)
	}

	return writer.Close()
}
