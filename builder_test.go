package sqlfilter

import (
	"errors"
	"strings"
	"testing"

	"github.com/hugr-lab/sqlfilter/expr"
	"github.com/hugr-lab/sqlfilter/field"
	"github.com/hugr-lab/sqlfilter/operator"
)

func TestBuildRequiresModel(t *testing.T) {
	_, err := Define("NoModelFilter", nil).
		Field("first_name", field.String(field.Options{})).
		Build()
	if !errors.Is(err, ErrInvalidDefinition) {
		t.Fatalf("expected ErrInvalidDefinition, got %v", err)
	}
	if !strings.Contains(err.Error(), "Filter 'NoModelFilter' does not define a model") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestBuildErrors(t *testing.T) {
	m := newTestModels(t)

	tests := []struct {
		name    string
		builder *Builder
		is      error
		message string
	}{
		{
			name:    "unknown attribute",
			builder: Define("UnknownFilter", m.users).Field("nickname", field.String(field.Options{})),
			is:      ErrInvalidDefinition,
			message: "Error defining filter UnknownFilter: users model has no attribute called 'nickname'",
		},
		{
			name: "unknown field name",
			builder: Define("RenamedFilter", m.users).
				Field("name", field.String(field.Options{FieldName: "full_name"})),
			is:      ErrInvalidDefinition,
			message: "users model has no attribute called 'full_name'",
		},
		{
			name: "foreign key too deep",
			builder: Define("DeepFilter", m.articles).
				Field("category", field.String(field.Options{FieldName: "user.articles.title"})),
			is:      field.ErrPathTooDeep,
			message: "depth greater than 2 not supported yet",
		},
		{
			name:    "bad declaration",
			builder: Define("BadFilter", m.users).Declare("first_name", "not a field"),
			is:      ErrInvalidDefinition,
			message: "'first_name' is not a field, method field or nested filter",
		},
		{
			name:    "empty name",
			builder: Define("EmptyFilter", m.users).Field("", field.String(field.Options{})),
			is:      ErrInvalidDefinition,
			message: "declares an empty name",
		},
		{
			name: "unmapped type",
			builder: Define("TimeFilter", m.users).
				Options(Options{Fields: []string{"last_login_time"}}),
			is:      ErrInvalidDefinition,
			message: "could not map type 'time64[us]' for field 'last_login_time'",
		},
		{
			name: "relationship in allow-list",
			builder: Define("RelFilter", m.users).
				Options(Options{Fields: []string{"articles"}}),
			is:      ErrInvalidDefinition,
			message: "could not map type 'relationship' for field 'articles'",
		},
		{
			name: "unknown allow-listed column",
			builder: Define("AllowFilter", m.users).
				Options(Options{Fields: []string{"nickname"}}),
			is:      ErrInvalidDefinition,
			message: "users model has no attribute called 'nickname'",
		},
		{
			name: "unknown join",
			builder: Define("JoinFilter", m.articles).
				Field("title", field.String(field.Options{Join: "author"})),
			is:      field.ErrUnknownAttribute,
			message: "articles model has no relationship called 'author'",
		},
		{
			name: "abstract with allow-list",
			builder: Abstract("AbstractFilter").
				Options(Options{Fields: []string{"first_name"}}),
			is:      ErrInvalidDefinition,
			message: "cannot declare fields without a model",
		},
		{
			name:    "extend nil",
			builder: Extend("OrphanFilter", nil),
			is:      ErrInvalidDefinition,
			message: "extends a nil definition",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, tt.is) {
				t.Errorf("expected error to match %v, got %v", tt.is, err)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("expected error containing '%s', got '%s'", tt.message, err.Error())
			}
		})
	}
}

func TestBuildTwice(t *testing.T) {
	m := newTestModels(t)
	b := Define("UserFilter", m.users).Field("first_name", field.String(field.Options{}))
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := b.Build(); !errors.Is(err, ErrInvalidDefinition) {
		t.Errorf("expected ErrInvalidDefinition on second Build, got %v", err)
	}
}

func TestMustBuildPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected MustBuild to panic")
		}
	}()
	Define("NoModelFilter", nil).MustBuild()
}

func TestNotCompatible(t *testing.T) {
	m := newTestModels(t)
	users := Define("UserFilter", m.users).
		Field("first_name", field.String(field.Options{})).
		MustBuild()

	t.Run("extend with other model", func(t *testing.T) {
		_, err := Extend("ArticleFilter", users).Model(m.articles).Build()
		var nerr *NotCompatibleError
		if !errors.As(err, &nerr) {
			t.Fatalf("expected *NotCompatibleError, got %v", err)
		}
		if !errors.Is(err, ErrInvalidDefinition) {
			t.Error("expected NotCompatibleError to match ErrInvalidDefinition")
		}
		if nerr.Model != "articles" || nerr.BaseModel != "users" {
			t.Errorf("unexpected models: %s, %s", nerr.Model, nerr.BaseModel)
		}
	})

	t.Run("nested over other model", func(t *testing.T) {
		_, err := Define("ArticleFilter", m.articles).
			Field("title", field.String(field.Options{})).
			Nested("author", Nested(users, NestedOptions{})).
			Build()
		var nerr *NotCompatibleError
		if !errors.As(err, &nerr) {
			t.Fatalf("expected *NotCompatibleError, got %v", err)
		}
		expected := "filter ArticleFilter (model articles) is not compatible with filter UserFilter (model users)"
		if nerr.Error() != expected {
			t.Errorf("expected '%s', got '%s'", expected, nerr.Error())
		}
	})

	t.Run("nested inherited from abstract base", func(t *testing.T) {
		articles := Define("ArticleFilter", m.articles).
			Field("title", field.String(field.Options{})).
			MustBuild()
		base := Abstract("BaseFilter").
			Nested("art", Nested(articles, NestedOptions{})).
			MustBuild()

		_, err := Extend("UserFilter", base).Model(m.users).Build()
		var nerr *NotCompatibleError
		if !errors.As(err, &nerr) {
			t.Fatalf("expected *NotCompatibleError, got %v", err)
		}
		expected := "filter UserFilter (model users) is not compatible with filter ArticleFilter (model articles)"
		if nerr.Error() != expected {
			t.Errorf("expected '%s', got '%s'", expected, nerr.Error())
		}

		if _, err := Extend("ArticleSearch", base).Model(m.articles).Build(); err != nil {
			t.Errorf("expected nested filter over the same model to build, got %v", err)
		}
	})
}

func TestAllowListCreatesFields(t *testing.T) {
	m := newTestModels(t)
	def, err := Define("UserFilter", m.users).
		Field("email", field.String(field.Options{Lookup: operator.Contains})).
		Options(Options{Fields: []string{"email", "first_name", "age", "is_approved", "birth_date"}}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	expected := []string{"email", "first_name", "age", "is_approved", "birth_date"}
	got := def.Fields()
	if strings.Join(got, ",") != strings.Join(expected, ",") {
		t.Fatalf("expected fields %v, got %v", expected, got)
	}

	types := map[string]string{
		"first_name":  "string",
		"age":         "int64",
		"is_approved": "bool",
		"birth_date":  "time",
	}
	for name, typeName := range types {
		f, ok := def.Field(name)
		if !ok {
			t.Fatalf("field %s not created", name)
		}
		if f.TypeName() != typeName {
			t.Errorf("field %s: expected type '%s', got '%s'", name, typeName, f.TypeName())
		}
		if !f.Bound() || f.Name() != name {
			t.Errorf("field %s not bound", name)
		}
	}

	f, _ := def.Field("email")
	if f.Lookup() != operator.Contains {
		t.Errorf("declared field replaced by a default one")
	}
}

func TestDeclareReplacesAnyKind(t *testing.T) {
	m := newTestModels(t)
	def, err := Define("UserFilter", m.users).
		Field("first_name", field.String(field.Options{})).
		Method("first_name", field.Method("by_name", field.MethodOptions{})).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, ok := def.Field("first_name"); ok {
		t.Error("expected the field to be replaced")
	}
	if _, ok := def.MethodField("first_name"); !ok {
		t.Error("expected the method field to be declared")
	}
}

func TestExtend(t *testing.T) {
	m := newTestModels(t)
	session := offlineSession()

	base := Define("BaseFilter", m.users).
		Field("first_name", field.String(field.Options{})).
		Field("age", field.Integer(field.Options{})).
		Method("approved", field.Method("is_approved", field.MethodOptions{})).
		Func("is_approved", func(v any) expr.Expression {
			return expr.Eq(expr.TableCol("users", "is_approved"), v)
		}).
		Options(Options{Session: session, Operator: operator.Or, PageSize: 5, OrderBy: "age"}).
		MustBuild()

	sql, args := applySQL(t, base, map[string]any{"approved": true}, nil)
	if sql != "SELECT users.* FROM users WHERE users.is_approved = ?" || args != "[true]" {
		t.Errorf("expected method field predicate, got '%s' %s", sql, args)
	}

	derived, err := Extend("DerivedFilter", base).
		Field("first_name", field.String(field.Options{Lookup: operator.StartsWith})).
		Field("approved", field.Boolean(field.Options{FieldName: "is_approved"})).
		Field("email", field.String(field.Options{})).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	expected := "first_name,age,approved,email"
	if got := strings.Join(derived.Fields(), ","); got != expected {
		t.Errorf("expected fields '%s', got '%s'", expected, got)
	}
	if len(derived.MethodFields()) != 0 {
		t.Errorf("expected inherited method field to be replaced, got %v", derived.MethodFields())
	}

	f, _ := derived.Field("first_name")
	if f.Lookup() != operator.StartsWith {
		t.Error("expected overriding field in derived definition")
	}
	bf, _ := base.Field("first_name")
	if bf.Lookup() != operator.Equals {
		t.Error("base definition changed by Extend")
	}
	if len(base.Fields()) != 2 || len(base.MethodFields()) != 1 {
		t.Errorf("base declarations changed: %v %v", base.Fields(), base.MethodFields())
	}

	if derived.Model() != base.Model() {
		t.Error("expected the model of base")
	}
	if derived.Session() != session {
		t.Error("expected inherited session")
	}
	if derived.Operator() != operator.Or {
		t.Error("expected inherited operator")
	}
	if fn, ok := derived.Func("is_approved"); !ok {
		t.Error("expected inherited filter method")
	} else if _, ok := fn.(func(any) expr.Expression); !ok {
		t.Errorf("unexpected inherited filter method %T", fn)
	}
	if derived.PageSize() != 0 || derived.OrderBy() != nil {
		t.Error("page size and ordering must not be inherited")
	}

	// Inherited fields are rebound on the derived definition.
	af, _ := derived.Field("age")
	baf, _ := base.Field("age")
	if af == baf {
		t.Error("expected inherited field to be cloned")
	}
}

func TestAbstract(t *testing.T) {
	m := newTestModels(t)
	abstract := Abstract("NameFilter").
		Field("first_name", field.String(field.Options{Lookup: operator.Contains})).
		MustBuild()
	if !abstract.Abstract() {
		t.Fatal("expected abstract definition")
	}

	if _, err := abstract.New(nil, &InstanceOptions{Session: offlineSession()}); !errors.Is(err, ErrInvalidDefinition) {
		t.Errorf("expected abstract instantiation to fail, got %v", err)
	}

	concrete, err := Extend("UserFilter", abstract).Model(m.users).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	f, ok := concrete.Field("first_name")
	if !ok || !f.Bound() {
		t.Fatal("expected inherited field to be bound to the model")
	}
}
