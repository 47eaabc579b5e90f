// Package sqlfilter turns loosely-typed request input into predicates over a
// relational model and applies them, with joins, ordering and pagination,
// to a query.
//
// A filter is declared once as a Definition and instantiated per request:
//
//	package main
//
//	import (
//	    "context"
//	    "database/sql"
//	    "net/url"
//
//	    "github.com/apache/arrow-go/v18/arrow"
//	    _ "github.com/duckdb/duckdb-go/v2"
//
//	    "github.com/hugr-lab/sqlfilter"
//	    "github.com/hugr-lab/sqlfilter/field"
//	    "github.com/hugr-lab/sqlfilter/input"
//	    "github.com/hugr-lab/sqlfilter/model"
//	    "github.com/hugr-lab/sqlfilter/operator"
//	    "github.com/hugr-lab/sqlfilter/sqlexec"
//	)
//
//	func main() {
//	    users := model.New("users", arrow.NewSchema([]arrow.Field{
//	        {Name: "id", Type: arrow.PrimitiveTypes.Int64},
//	        {Name: "first_name", Type: arrow.BinaryTypes.String},
//	        {Name: "age", Type: arrow.PrimitiveTypes.Int32},
//	    }, nil))
//
//	    db, _ := sql.Open("duckdb", "")
//	    session := sqlexec.NewSession(db, nil)
//
//	    userFilter := sqlfilter.Define("UserFilter", users).
//	        Field("first_name", field.String(field.Options{Lookup: operator.Contains})).
//	        Field("min_age", field.Integer(field.Options{FieldName: "age", Lookup: operator.GTE})).
//	        Options(sqlfilter.Options{Session: session, OrderBy: "-age"}).
//	        MustBuild()
//
//	    values, _ := url.ParseQuery("first_name=Jo&min_age=21&page_size=10")
//	    data, _ := input.FromValues(values)
//
//	    f, _ := userFilter.New(data, nil)
//	    page, _ := f.Paginate(context.Background())
//	    rows, _ := page.Objects(context.Background())
//	    _ = rows
//	}
//
// # Declarations
//
// A definition holds three kinds of declarations, looked up by name:
//
//   - Fields (field.Field): coerce one input value and compare a column
//     with it. A dotted FieldName ("user.first_name") filters on a column
//     of a related model and joins it.
//   - Nested filters (NestedFilter): embed another definition over the
//     same model, reading a sub-map of the input or the input itself.
//   - Method fields (field.MethodField): delegate the predicate to a
//     function registered with Builder.Func or given directly.
//
// Options.Fields restricts which declarations participate. Names in the
// list that are not declared get a default field derived from the column
// type.
//
// # Inheritance
//
// Extend copies every declaration of a base definition. Declarations of
// the same name replace inherited ones entirely; declarations are cloned
// so nothing done to a derived definition affects its base.
//
// # Errors
//
// Build errors match ErrInvalidDefinition. Input errors are returned as
// *ValidationError holding every field error, except when an external
// schema.Validator is configured: its errors are returned unwrapped.
// Unknown ordering columns return *OrderByError.
package sqlfilter
