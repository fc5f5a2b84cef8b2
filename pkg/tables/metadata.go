package tables

import "github.com/apache/arrow/go/v18/arrow"

// commentKey is the Arrow metadata key describing a field or schema.
const commentKey = "comment"

// comment returns metadata holding a single description, or empty metadata
// for an empty description.
func comment(text string) arrow.Metadata {
	if text == "" {
		return arrow.Metadata{}
	}
	return arrow.NewMetadata([]string{commentKey}, []string{text})
}
