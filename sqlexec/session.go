// Package sqlexec implements the query executor on top of database/sql.
//
// Queries compile to a single SELECT with joins, WHERE, ORDER BY and
// LIMIT/OFFSET clauses and bound arguments:
//
//	db, _ := sql.Open("duckdb", "")
//	s := sqlexec.NewSession(db, nil)
//	rows, err := s.Query(users).
//	    Filter(expr.Eq(expr.TableCol("users", "age"), 21)).
//	    OrderBy(expr.Asc(expr.TableCol("users", "first_name"))).
//	    All(ctx)
package sqlexec

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/hugr-lab/sqlfilter/expr"
	"github.com/hugr-lab/sqlfilter/model"
	"github.com/hugr-lab/sqlfilter/query"
)

// Options configures a Session. All fields are OPTIONAL.
type Options struct {
	// Dialect selects parameter syntax. Default: expr.DuckDB.
	Dialect expr.Dialect

	// Encoder configures column mapping of the SQL encoder.
	Encoder *expr.EncoderOptions

	// Logger for statement logging. Default: slog.Default().
	Logger *slog.Logger

	// LogLevel sets the logging level when Logger is nil.
	LogLevel *slog.Level
}

// Session provides queries executed on a *sql.DB.
type Session struct {
	db     *sql.DB
	enc    *expr.SQLEncoder
	logger *slog.Logger
}

// NewSession creates a session on db. If opts is nil, default options are
// used.
func NewSession(db *sql.DB, opts *Options) *Session {
	if opts == nil {
		opts = &Options{}
	}

	logger := opts.Logger
	if logger == nil {
		if opts.LogLevel != nil {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: *opts.LogLevel}))
		} else {
			logger = slog.Default()
		}
	}

	return &Session{
		db:     db,
		enc:    expr.NewSQLEncoder(opts.Dialect, opts.Encoder),
		logger: logger,
	}
}

// DB returns the underlying database handle.
func (s *Session) DB() *sql.DB {
	return s.db
}

// Encoder returns the SQL encoder of the session.
func (s *Session) Encoder() *expr.SQLEncoder {
	return s.enc
}

// Query implements query.Session interface.
func (s *Session) Query(m model.Model) query.Query {
	return s.NewQuery(m)
}

// NewQuery returns an unfiltered query over m.
func (s *Session) NewQuery(m model.Model) *Query {
	return &Query{session: s, model: m, limit: -1}
}
