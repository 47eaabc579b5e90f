// Package expr provides the predicate expression tree produced by filters
// and its encoding to parameterised SQL.
//
// Trees are built with the constructor helpers and are immutable once
// built:
//
//	pred := expr.And(
//	    expr.Eq(expr.Col("first_name"), "John"),
//	    expr.Gt(expr.TableCol("users", "age"), 21),
//	)
//
// The literal-true placeholder returned by Empty means "no constraint".
// And and Or drop it, so folding a list of optional predicates never has
// to special-case absent input.
//
// # Encoding
//
// An SQLEncoder renders a tree for a dialect and collects bound arguments:
//
//	enc := expr.NewSQLEncoder(expr.DuckDB, nil)
//	where, args := enc.Encode(pred)
//	// where: (first_name = ? AND users.age > ?)
//	// args:  ["John", 21]
//
// Column names can be remapped or replaced by SQL expressions with
// EncoderOptions, in the same way for every dialect.
package expr
