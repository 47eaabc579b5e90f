package operator

import (
	"errors"
	"testing"

	"github.com/hugr-lab/sqlfilter/expr"
)

func encode(t *testing.T, e expr.Expression) string {
	t.Helper()
	sql, _ := expr.NewSQLEncoder(expr.DuckDB, nil).Encode(e)
	return sql
}

func TestOperators(t *testing.T) {
	tests := []struct {
		name     string
		op       Operator
		params   []any
		expected string
	}{
		{"equals", Equals, []any{1}, "age = ?"},
		{"equals nil", Equals, []any{nil}, "age IS NULL"},
		{"is", Is, []any{nil}, "age IS NULL"},
		{"is not", IsNot, []any{nil}, "age IS NOT NULL"},
		{"is empty", IsEmpty, nil, "age IS NULL"},
		{"is empty ignores param", IsEmpty, []any{true}, "age IS NULL"},
		{"is not empty", IsNotEmpty, nil, "age IS NOT NULL"},
		{"lt", LT, []any{1}, "age < ?"},
		{"lte", LTE, []any{1}, "age <= ?"},
		{"gt", GT, []any{1}, "age > ?"},
		{"gte", GTE, []any{1}, "age >= ?"},
		{"range", Range, []any{1, 5}, "age BETWEEN ? AND ?"},
		{"in", In, []any{1, 2}, "age IN (?, ?)"},
		{"in empty", In, []any{}, "FALSE"},
		{"contains", Contains, []any{"a"}, "age LIKE ('%' || ? || '%')"},
		{"icontains", IContains, []any{"a"}, "lower(age) LIKE ('%' || lower(?) || '%')"},
		{"startswith", StartsWith, []any{"a"}, "age LIKE (? || '%')"},
		{"istartswith", IStartsWith, []any{"a"}, "lower(age) LIKE (lower(?) || '%')"},
		{"endswith", EndsWith, []any{"a"}, "age LIKE ('%' || ?)"},
		{"iendswith", IEndsWith, []any{"a"}, "lower(age) LIKE ('%' || lower(?))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(tt.op, "age", tt.params)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if got := encode(t, b.ToSQL()); got != tt.expected {
				t.Errorf("expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestLogicalOperators(t *testing.T) {
	a := expr.Eq(expr.Col("a"), 1)
	b := expr.Eq(expr.Col("b"), 2)

	got, err := Apply(And, a, []any{b})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if sql := encode(t, got); sql != "(a = ? AND b = ?)" {
		t.Errorf("unexpected and: %s", sql)
	}

	got, err = Apply(Or, a, []any{b})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if sql := encode(t, got); sql != "(a = ? OR b = ?)" {
		t.Errorf("unexpected or: %s", sql)
	}

	if _, err := New(And, a, []any{}); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("expected ErrInvalidParam for empty And, got %v", err)
	}
}

func TestRangeParams(t *testing.T) {
	for _, params := range [][]any{{}, {1}, {1, 2, 3}} {
		_, err := New(Range, "age", params)
		var perr *InvalidParamError
		if !errors.As(err, &perr) {
			t.Fatalf("expected InvalidParamError for %v, got %v", params, err)
		}
		if perr.Operator != "Range" {
			t.Errorf("expected Range operator, got %s", perr.Operator)
		}
	}

	_, err := New(Range, "age", []any{})
	expected := "Range.params should have exactly 2 values, got 0."
	if err == nil || err.Error() != expected {
		t.Errorf("expected '%s', got '%v'", expected, err)
	}
}

func TestParamsMustBeList(t *testing.T) {
	_, err := New(Equals, "age", "1")
	expected := "Equals.params expected to be a list, got string."
	if err == nil || err.Error() != expected {
		t.Errorf("expected '%s', got '%v'", expected, err)
	}

	if _, err := New(Equals, 42, []any{1}); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("expected ErrInvalidParam for bad left operand, got %v", err)
	}

	if _, err := New(Equals, "age", []any{1, 2}); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("expected ErrInvalidParam for two params, got %v", err)
	}
}

func TestNewKeepsOperands(t *testing.T) {
	col := expr.TableCol("users", "age")
	b, err := New(GT, col, []any{3})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if b.Left() != col {
		t.Error("expected expression left operand to be kept")
	}
	if b.Operator() != GT || len(b.Params()) != 1 {
		t.Errorf("unexpected binding: %#v", b)
	}
}

func TestLookup(t *testing.T) {
	op, ok := Lookup("icontains")
	if !ok || op != IContains {
		t.Errorf("expected IContains, got %v", op)
	}
	if _, ok := Lookup("like"); ok {
		t.Error("expected unknown operator to be absent")
	}
}
