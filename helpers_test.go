package sqlfilter

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/hugr-lab/sqlfilter/internal/token"
	"github.com/hugr-lab/sqlfilter/model"
	"github.com/hugr-lab/sqlfilter/query"
	"github.com/hugr-lab/sqlfilter/sqlexec"
)

type testModels struct {
	users      *model.StaticModel
	articles   *model.StaticModel
	categories *model.StaticModel
}

func newTestModels(t *testing.T) *testModels {
	t.Helper()
	users := model.New("users", arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "first_name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "last_name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "email", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "age", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		{Name: "is_approved", Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
		{Name: "birth_date", Type: arrow.FixedWidthTypes.Date32},
		{Name: "created_at", Type: &arrow.TimestampType{Unit: arrow.Microsecond}, Nullable: true},
		{Name: "last_login_time", Type: arrow.FixedWidthTypes.Time64us, Nullable: true},
	}, nil))
	categories := model.New("categories", arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil))
	articles := model.New("articles", arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "title", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "category_id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "user_id", Type: arrow.PrimitiveTypes.Int64},
	}, nil))

	for _, err := range []error{
		articles.Relate("user", users, "user_id", "id"),
		articles.Relate("category", categories, "category_id", "id"),
		users.Relate("articles", articles, "id", "user_id"),
	} {
		if err != nil {
			t.Fatalf("Relate failed: %v", err)
		}
	}
	return &testModels{users: users, articles: articles, categories: categories}
}

// sqlOf returns the compiled statement of a sqlexec query.
func sqlOf(t *testing.T, q query.Query) (string, []any) {
	t.Helper()
	sq, ok := q.(*sqlexec.Query)
	if !ok {
		t.Fatalf("expected *sqlexec.Query, got %T", q)
	}
	return sq.SQL()
}

// offlineSession compiles queries without a database.
func offlineSession() *sqlexec.Session {
	return sqlexec.NewSession(nil, nil)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// openStore returns a DuckDB session with the test tables created.
func openStore(t *testing.T, m *testModels) *sqlexec.Session {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("Failed to open DuckDB: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	s := sqlexec.NewSession(db, nil)
	for _, tm := range []model.Model{m.users, m.categories, m.articles} {
		if err := s.CreateTable(context.Background(), tm); err != nil {
			t.Fatalf("CreateTable failed: %v", err)
		}
	}
	return s
}

func insertUsers(t *testing.T, s *sqlexec.Session, m *testModels, rows ...query.Row) {
	t.Helper()
	for i, row := range rows {
		if _, ok := row["id"]; !ok {
			row["id"] = int64(i + 1)
		}
		if _, ok := row["birth_date"]; !ok {
			row["birth_date"] = date(1990, time.January, 1)
		}
	}
	if err := s.Insert(context.Background(), m.users, rows...); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
}

// seedUsers inserts n users named "User 1".."User n" aged 20+i.
func seedUsers(t *testing.T, s *sqlexec.Session, m *testModels, n int) {
	t.Helper()
	rows := make([]query.Row, n)
	for i := range rows {
		rows[i] = query.Row{
			"first_name": fmt.Sprintf("User %d", i+1),
			"age":        int32(20 + i),
			"birth_date": date(1990+i, time.January, 1),
		}
	}
	insertUsers(t, s, m, rows...)
}

func names(rows []query.Row, key string) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, fmt.Sprint(r[key]))
	}
	return out
}

func tokenFor(filter string, page int, data map[string]any) (string, error) {
	return token.Encode(token.Payload{Filter: filter, Page: page, Data: data})
}
