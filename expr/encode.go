package expr

import "strings"

// Encoder converts predicate trees to SQL text and bound arguments.
// Implementations handle dialect-specific syntax (DuckDB, PostgreSQL, etc.).
type Encoder interface {
	// Encode converts an expression to SQL.
	// Returns empty string if the expression is a placeholder.
	Encode(e Expression) (string, []any)

	// EncodeOrder converts ordering terms to the body of an ORDER BY clause.
	// Returns empty string if there are no terms.
	EncodeOrder(orders []Order) (string, []any)
}

// Dialect selects parameter and identifier syntax.
type Dialect int

const (
	// DuckDB uses '?' parameters.
	DuckDB Dialect = iota
	// PostgreSQL uses '$n' parameters.
	PostgreSQL
)

// String returns the dialect name.
func (d Dialect) String() string {
	switch d {
	case DuckDB:
		return "duckdb"
	case PostgreSQL:
		return "postgresql"
	default:
		return "unknown"
	}
}

// EncoderOptions configures encoding behavior.
type EncoderOptions struct {
	// ColumnMapping maps column names to target names.
	// Columns not in the map use their own names.
	ColumnMapping map[string]string

	// ColumnExpressions maps column names to SQL expressions.
	// Keys are either "table.column" or "column"; the qualified key wins.
	// Takes precedence over ColumnMapping.
	ColumnExpressions map[string]string
}

// QuoteIdentifier returns a quoted identifier if needed.
// Both supported dialects use double quotes for identifiers.
func QuoteIdentifier(name string) string {
	if needsQuoting(name) {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return name
}

// needsQuoting returns true if the identifier needs quoting.
func needsQuoting(name string) bool {
	if len(name) == 0 {
		return true
	}

	c := name[0]
	if !isLetter(c) && c != '_' {
		return true
	}

	for i := 1; i < len(name); i++ {
		c = name[i]
		if !isLetter(c) && !isDigit(c) && c != '_' {
			return true
		}
	}

	// Lower-case identifiers only; folding differs between engines.
	if strings.ToLower(name) != name {
		return true
	}

	switch strings.ToUpper(name) {
	case "SELECT", "FROM", "WHERE", "AND", "OR", "NOT", "NULL", "TRUE", "FALSE",
		"INSERT", "UPDATE", "DELETE", "CREATE", "DROP", "ALTER", "TABLE", "INDEX",
		"JOIN", "LEFT", "RIGHT", "INNER", "OUTER", "ON", "AS", "IN", "IS", "LIKE",
		"BETWEEN", "EXISTS", "CASE", "WHEN", "THEN", "ELSE", "END", "ORDER", "BY",
		"GROUP", "HAVING", "LIMIT", "OFFSET", "UNION", "EXCEPT", "INTERSECT",
		"ALL", "DISTINCT", "VALUES", "SET", "INTO", "PRIMARY", "KEY", "FOREIGN",
		"REFERENCES", "CONSTRAINT", "DEFAULT", "CHECK", "UNIQUE", "ASC", "DESC",
		"NULLS", "FIRST", "LAST", "CAST", "INTERVAL", "DATE", "TIME", "TIMESTAMP",
		"USER":
		return true
	}

	return false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
