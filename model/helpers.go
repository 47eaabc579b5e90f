package model

import "github.com/apache/arrow-go/v18/arrow"

// FindPrimaryKey returns the index of the primary key column in the schema.
// Returns -1 if no primary key column is found.
//
// The primary key column is identified by:
//   - Metadata key "primary_key" with non-empty value, or
//   - Column name "id" (case-sensitive)
//
// Metadata takes precedence over the column name.
func FindPrimaryKey(schema *arrow.Schema) int {
	if schema == nil {
		return -1
	}

	byName := -1
	for i := 0; i < schema.NumFields(); i++ {
		field := schema.Field(i)
		if md := field.Metadata; md.Len() > 0 {
			if idx := md.FindKey("primary_key"); idx >= 0 && md.Values()[idx] != "" {
				return i
			}
		}
		if field.Name == "id" && byName == -1 {
			byName = i
		}
	}
	return byName
}
