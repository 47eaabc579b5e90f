package sqlfilter

import (
	"log/slog"
	"os"

	"github.com/hugr-lab/sqlfilter/operator"
	"github.com/hugr-lab/sqlfilter/query"
	"github.com/hugr-lab/sqlfilter/schema"
)

// Options configures a filter definition.
type Options struct {
	// Fields is the allow-list of names that participate in the filter.
	// Names that are not declared are created from the model column with
	// the default field of the column type.
	// OPTIONAL: If empty, every declared field, nested filter and method
	// field participates. Not inherited by Extend.
	Fields []string

	// OrderBy is the ordering used when the input has no "order_by" key.
	// Accepts the same forms as the input value: "first_name,-age",
	// []string, expr.Order or []expr.Order.
	// OPTIONAL: No ordering if nil. Not inherited by Extend.
	OrderBy any

	// PageSize is the page size used when the input has no "page_size" key.
	// OPTIONAL: If 0, a single page holds every row. Not inherited by Extend.
	PageSize int

	// Session provides base queries when a filter is created without one.
	// OPTIONAL: Inherited by Extend if nil.
	Session query.Session

	// Schema replaces field validation with external validation.
	// OPTIONAL: Not inherited by Extend.
	Schema schema.Validator

	// Operator combines sibling predicates when a filter is created
	// without one.
	// OPTIONAL: Uses operator.And if nil. Inherited by Extend if nil.
	Operator operator.Operator

	// Logger for definition and filter logging.
	// OPTIONAL: Uses slog.Default() if nil. Inherited by Extend if nil.
	// Note: If LogLevel is specified, a new logger will be created with that level.
	Logger *slog.Logger

	// LogLevel sets the logging level.
	// OPTIONAL: If Logger is also provided, LogLevel is ignored.
	LogLevel *slog.Level
}

// InstanceOptions configures a single filter instance.
// All fields are OPTIONAL.
type InstanceOptions struct {
	// Operator combines sibling predicates. Default: Options.Operator.
	Operator operator.Operator

	// Query is the base query to filter.
	// Takes precedence over both sessions.
	Query query.Query

	// Session provides the base query when Query is nil.
	// Takes precedence over Options.Session.
	Session query.Session

	// Schema replaces field validation. Default: Options.Schema.
	Schema schema.Validator
}

// NestedOptions configures a nested filter. All fields are OPTIONAL.
type NestedOptions struct {
	// Operator combines the fields of the nested filter.
	// Default: operator.And.
	Operator operator.Operator

	// OuterOperator combines the nested predicate with its siblings.
	// Default: the operator of the parent filter instance.
	OuterOperator operator.Operator

	// Flat reads nested input from the root of the parent input instead
	// of the sub-map under DataSourceName.
	// Default: false, the nested input is a sub-map. Set it explicitly
	// when the nested fields share the keys of the parent input.
	Flat bool

	// DataSourceName is the input key of the sub-map.
	// Default: the name the nested filter is declared with.
	DataSourceName string

	// Schema validates the nested input.
	// Default: the schema of the parent filter instance.
	Schema schema.Validator
}

// newLogger returns the configured logger or nil if none is configured.
func newLogger(logger *slog.Logger, level *slog.Level) *slog.Logger {
	if logger != nil {
		return logger
	}
	if level != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: *level}))
	}
	return nil
}
