package model

import "github.com/apache/arrow-go/v18/arrow"

// Kind is the value category of a column, used to pick a default field
// type for columns that are declared by name only.
type Kind string

const (
	KindUnknown  Kind = ""
	KindString   Kind = "string"
	KindInteger  Kind = "integer"
	KindFloat    Kind = "float"
	KindDecimal  Kind = "decimal"
	KindDate     Kind = "date"
	KindDateTime Kind = "datetime"
	KindBoolean  Kind = "boolean"
	KindUUID     Kind = "uuid"
)

const (
	extensionNameKey = "ARROW:extension:name"
	uuidExtension    = "arrow.uuid"
)

// KindOf classifies an Arrow field.
// UUIDs are recognised by the arrow.uuid extension, either as a registered
// extension type or through field metadata.
func KindOf(f arrow.Field) Kind {
	if ext, ok := f.Type.(arrow.ExtensionType); ok {
		if ext.ExtensionName() == uuidExtension {
			return KindUUID
		}
		return kindOfType(ext.StorageType())
	}
	if idx := f.Metadata.FindKey(extensionNameKey); idx >= 0 && f.Metadata.Values()[idx] == uuidExtension {
		return KindUUID
	}
	return kindOfType(f.Type)
}

func kindOfType(dt arrow.DataType) Kind {
	if dt == nil {
		return KindUnknown
	}
	switch dt.ID() {
	case arrow.STRING, arrow.LARGE_STRING, arrow.STRING_VIEW:
		return KindString
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return KindInteger
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return KindFloat
	case arrow.DECIMAL128, arrow.DECIMAL256:
		return KindDecimal
	case arrow.DATE32, arrow.DATE64:
		return KindDate
	case arrow.TIMESTAMP:
		return KindDateTime
	case arrow.BOOL:
		return KindBoolean
	default:
		return KindUnknown
	}
}

// UUIDField returns a 16-byte fixed-size binary field tagged with the
// arrow.uuid extension name.
func UUIDField(name string, nullable bool) arrow.Field {
	return arrow.Field{
		Name:     name,
		Type:     &arrow.FixedSizeBinaryType{ByteWidth: 16},
		Nullable: nullable,
		Metadata: arrow.MetadataFrom(map[string]string{extensionNameKey: uuidExtension}),
	}
}
