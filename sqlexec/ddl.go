package sqlexec

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/hugr-lab/sqlfilter/expr"
	"github.com/hugr-lab/sqlfilter/model"
	"github.com/hugr-lab/sqlfilter/query"
)

// TypeName formats the Arrow type of f as a SQL column type.
// Returns empty string for types without a SQL equivalent.
func TypeName(f arrow.Field, dialect expr.Dialect) string {
	if model.KindOf(f) == model.KindUUID {
		return "UUID"
	}

	pg := dialect == expr.PostgreSQL
	switch dt := f.Type.(type) {
	case *arrow.Decimal128Type:
		return fmt.Sprintf("DECIMAL(%d,%d)", dt.Precision, dt.Scale)
	case *arrow.Decimal256Type:
		return fmt.Sprintf("DECIMAL(%d,%d)", dt.Precision, dt.Scale)
	case *arrow.TimestampType:
		if dt.TimeZone != "" {
			return "TIMESTAMPTZ"
		}
		return "TIMESTAMP"
	}

	switch f.Type.ID() {
	case arrow.BOOL:
		return "BOOLEAN"
	case arrow.INT8:
		if pg {
			return "SMALLINT"
		}
		return "TINYINT"
	case arrow.INT16:
		return "SMALLINT"
	case arrow.INT32:
		return "INTEGER"
	case arrow.INT64:
		return "BIGINT"
	case arrow.UINT8:
		if pg {
			return "SMALLINT"
		}
		return "UTINYINT"
	case arrow.UINT16:
		if pg {
			return "INTEGER"
		}
		return "USMALLINT"
	case arrow.UINT32:
		if pg {
			return "BIGINT"
		}
		return "UINTEGER"
	case arrow.UINT64:
		if pg {
			return "NUMERIC(20,0)"
		}
		return "UBIGINT"
	case arrow.FLOAT16, arrow.FLOAT32:
		return "REAL"
	case arrow.FLOAT64:
		if pg {
			return "DOUBLE PRECISION"
		}
		return "DOUBLE"
	case arrow.STRING, arrow.LARGE_STRING, arrow.STRING_VIEW:
		return "VARCHAR"
	case arrow.BINARY, arrow.LARGE_BINARY, arrow.FIXED_SIZE_BINARY:
		if pg {
			return "BYTEA"
		}
		return "BLOB"
	case arrow.DATE32, arrow.DATE64:
		return "DATE"
	case arrow.TIME32, arrow.TIME64:
		return "TIME"
	default:
		return ""
	}
}

// CreateTableSQL returns the CREATE TABLE statement for m.
func CreateTableSQL(m model.Model, dialect expr.Dialect) (string, error) {
	schema := m.ArrowSchema()
	if schema == nil || schema.NumFields() == 0 {
		return "", fmt.Errorf("create table %s: model has no columns", m.Name())
	}

	pk := model.FindPrimaryKey(schema)
	cols := make([]string, 0, schema.NumFields())
	for i, f := range schema.Fields() {
		typeName := TypeName(f, dialect)
		if typeName == "" {
			return "", fmt.Errorf("create table %s: unsupported type %s for column '%s'", m.Name(), f.Type, f.Name)
		}
		col := expr.QuoteIdentifier(f.Name) + " " + typeName
		switch {
		case i == pk:
			col += " PRIMARY KEY"
		case !f.Nullable:
			col += " NOT NULL"
		}
		cols = append(cols, col)
	}
	return "CREATE TABLE " + expr.QuoteIdentifier(m.Name()) + " (" + strings.Join(cols, ", ") + ")", nil
}

// CreateTable creates the table of m.
func (s *Session) CreateTable(ctx context.Context, m model.Model) error {
	stmt, err := CreateTableSQL(m, s.enc.Dialect())
	if err != nil {
		return err
	}
	s.logger.Debug("Creating table", "table", m.Name(), "sql", stmt)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create table %s: %w", m.Name(), err)
	}
	return nil
}

// Insert inserts rows into the table of m in a single transaction.
// Columns missing from a row are inserted as NULL.
func (s *Session) Insert(ctx context.Context, m model.Model, rows ...query.Row) (err error) {
	if len(rows) == 0 {
		return nil
	}

	fields := m.ArrowSchema().Fields()
	names := make([]string, 0, len(fields))
	marks := make([]string, 0, len(fields))
	for i, f := range fields {
		names = append(names, expr.QuoteIdentifier(f.Name))
		if s.enc.Dialect() == expr.PostgreSQL {
			marks = append(marks, fmt.Sprintf("$%d", i+1))
		} else {
			marks = append(marks, "?")
		}
	}
	stmt := "INSERT INTO " + expr.QuoteIdentifier(m.Name()) +
		" (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert %s: %w", m.Name(), err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return fmt.Errorf("insert %s: %w", m.Name(), err)
	}
	defer prepared.Close()

	s.logger.Debug("Inserting rows", "table", m.Name(), "rows", len(rows))
	for _, row := range rows {
		args := make([]any, 0, len(fields))
		for _, f := range fields {
			args = append(args, row[f.Name])
		}
		if _, err = prepared.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s: %w", m.Name(), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("insert %s: %w", m.Name(), err)
	}
	return nil
}

// Exec runs a statement on the session database.
func (s *Session) Exec(ctx context.Context, stmt string, args ...any) (sql.Result, error) {
	s.logger.Debug("Executing statement", "sql", stmt, "args", len(args))
	return s.db.ExecContext(ctx, stmt, args...)
}
