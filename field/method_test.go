package field

import (
	"errors"
	"testing"

	"github.com/hugr-lab/sqlfilter/expr"
	"github.com/hugr-lab/sqlfilter/internal/recovery"
)

func TestMethodFieldApply(t *testing.T) {
	search := func(v any) expr.Expression {
		return expr.Contains(expr.Col("first_name"), v)
	}
	src := &testSource{
		name:    "UserFilter",
		data:    map[string]any{"q": "jo"},
		methods: map[string]any{"search": search},
	}

	f := Method("search", MethodOptions{DataSourceName: "q"})
	f.Bind("search_field")
	got, err := f.Apply(src)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !expr.Equal(got, expr.Contains(expr.Col("first_name"), "jo")) {
		t.Errorf("unexpected predicate: %#v", got)
	}

	// Raw data is used, validated data is ignored.
	src.validated = map[string]any{"q": "other"}
	got, _ = f.Apply(src)
	if !expr.Equal(got, expr.Contains(expr.Col("first_name"), "jo")) {
		t.Errorf("expected raw value, got %#v", got)
	}
}

func TestMethodFieldAbsent(t *testing.T) {
	f := Method("missing", MethodOptions{})
	f.Bind("search")
	for _, data := range []map[string]any{{}, {"search": nil}} {
		got, err := f.Apply(&testSource{name: "UserFilter", data: data})
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if !expr.IsEmpty(got) {
			t.Errorf("expected placeholder, got %#v", got)
		}
	}
}

func TestMethodOf(t *testing.T) {
	fn := MethodFunc(func(v any) (expr.Expression, error) {
		return expr.Eq(expr.Col("age"), v), nil
	})
	f := MethodOf(fn, MethodOptions{})
	f.Bind("age")
	got, err := f.Apply(&testSource{name: "UserFilter", data: map[string]any{"age": 3}})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !expr.Equal(got, expr.Eq(expr.Col("age"), 3)) {
		t.Errorf("unexpected predicate: %#v", got)
	}
}

func TestMethodFieldErrors(t *testing.T) {
	data := map[string]any{"x": 1}

	t.Run("missing", func(t *testing.T) {
		f := Method("not_found", MethodOptions{})
		f.Bind("x")
		_, err := f.Apply(&testSource{name: "Mock", data: data})
		var merr *MissingMethodError
		if !errors.As(err, &merr) {
			t.Fatalf("expected MissingMethodError, got %v", err)
		}
		if err.Error() != "Mock has no method not_found" {
			t.Errorf("unexpected message: %s", err)
		}
	})

	t.Run("not callable", func(t *testing.T) {
		f := Method("attr", MethodOptions{})
		f.Bind("x")
		_, err := f.Apply(&testSource{name: "Mock", data: data, methods: map[string]any{"attr": 42}})
		var merr *MethodNotFoundError
		if !errors.As(err, &merr) {
			t.Fatalf("expected MethodNotFoundError, got %v", err)
		}
		if merr.Filter != "Mock" || merr.Field != "x" || merr.Method != "attr" {
			t.Errorf("unexpected error fields: %#v", merr)
		}
	})

	t.Run("nil expression", func(t *testing.T) {
		f := MethodOf(func(any) expr.Expression { return nil }, MethodOptions{})
		f.Bind("x")
		_, err := f.Apply(&testSource{name: "Mock", data: data})
		var eerr *EmptyExpressionError
		if !errors.As(err, &eerr) {
			t.Fatalf("expected EmptyExpressionError, got %v", err)
		}
		if err.Error() != "Mock.x must return a sql expression." {
			t.Errorf("unexpected message: %s", err)
		}
	})

	t.Run("returned error", func(t *testing.T) {
		sentinel := errors.New("bad value")
		f := MethodOf(func(any) (expr.Expression, error) { return nil, sentinel }, MethodOptions{})
		f.Bind("x")
		_, err := f.Apply(&testSource{name: "Mock", data: data})
		if !errors.Is(err, sentinel) {
			t.Errorf("expected sentinel error, got %v", err)
		}
	})

	t.Run("panic", func(t *testing.T) {
		f := MethodOf(func(any) expr.Expression { panic("boom") }, MethodOptions{})
		f.Bind("x")
		_, err := f.Apply(&testSource{name: "Mock", data: data})
		if !errors.Is(err, recovery.ErrPanic) {
			t.Errorf("expected ErrPanic, got %v", err)
		}
	})
}
