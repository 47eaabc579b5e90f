package field

import "github.com/hugr-lab/sqlfilter/model"

// Integer creates a field coercing values to int64.
// Strings must be base-10 integers; floats are truncated.
func Integer(opts Options) *Field {
	return Typed("int64", toInteger, opts)
}

// Float creates a field coercing values to float64.
func Float(opts Options) *Field {
	return Typed("float64", toFloat, opts)
}

// Decimal creates a field coercing values to decimal.Decimal.
func Decimal(opts Options) *Field {
	return Typed("decimal", toDecimal, opts)
}

// String creates a field coercing values to string.
func String(opts Options) *Field {
	return Typed("string", toString, opts)
}

// Boolean creates a field converting values by truthiness.
// Note that the string "false" is non-empty and therefore true.
func Boolean(opts Options) *Field {
	return Typed("bool", toBoolean, opts)
}

// UUID creates a field coercing values to uuid.UUID.
func UUID(opts Options) *Field {
	return Typed("uuid", toUUID, opts)
}

// Timestamp creates a field parsing seconds since the Unix epoch into a
// time.Time in date.Location.
func Timestamp(date DateOptions, opts Options) *Field {
	date.IsTimestamp = true
	return Typed(timeTypeName(date), timestampCoercer(date), opts)
}

// DateTime creates a field parsing values into a time.Time.
// time.Time input is accepted unchanged.
func DateTime(date DateOptions, opts Options) *Field {
	return Typed(timeTypeName(date), dateTimeCoercer(date), opts)
}

// Date creates a field parsing values into the calendar date they fall
// on, as midnight UTC.
func Date(date DateOptions, opts Options) *Field {
	return Typed(timeTypeName(date), dateCoercer(date), opts)
}

// ForKind creates the default field for a column kind.
// Returns false for kinds without a default field.
func ForKind(kind model.Kind, opts Options) (*Field, bool) {
	switch kind {
	case model.KindString:
		return String(opts), true
	case model.KindInteger:
		return Integer(opts), true
	case model.KindFloat:
		return Float(opts), true
	case model.KindDecimal:
		return Decimal(opts), true
	case model.KindDate:
		return Date(DateOptions{}, opts), true
	case model.KindDateTime:
		return DateTime(DateOptions{}, opts), true
	case model.KindBoolean:
		return Boolean(opts), true
	case model.KindUUID:
		return UUID(opts), true
	default:
		return nil, false
	}
}
