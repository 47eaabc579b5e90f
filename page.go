package sqlfilter

import (
	"context"
	"maps"

	"github.com/hugr-lab/sqlfilter/field"
	"github.com/hugr-lab/sqlfilter/internal/token"
	"github.com/hugr-lab/sqlfilter/paginator"
)

const (
	pageKey     = "page"
	pageSizeKey = "page_size"
)

var pageNumber = field.Integer(field.Options{})

// Paginate applies the filter and returns the requested page of the
// result.
//
// The page size is the "page_size" input value, else the definition
// default, else 0 for a single page. The page is the "page" input value,
// else 1. Both are coerced to integers; a value that cannot be coerced
// fails with *ValidationError.
func (f *Filter) Paginate(ctx context.Context) (*paginator.Paginator, error) {
	pageSize, err := f.intInput(pageSizeKey, f.def.pageSize)
	if err != nil {
		return nil, err
	}
	page, err := f.intInput(pageKey, 1)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 0 {
		pageSize = 0
	}

	q, err := f.Apply()
	if err != nil {
		return nil, err
	}
	return paginator.New(ctx, q, page, pageSize)
}

// intInput returns the integer input under key, or def when the value is
// missing or false.
func (f *Filter) intInput(key string, def int) (int, error) {
	raw, ok := f.data[key]
	if !ok || !field.Truthy(raw) {
		return def, nil
	}
	v, err := pageNumber.Validate(raw)
	if err != nil {
		return 0, &ValidationError{Errors: []*field.ValidationError{{Field: key, Message: err.Error()}}}
	}
	n, ok := v.(int64)
	if !ok {
		return 0, &ValidationError{Errors: []*field.ValidationError{{Field: key, Message: "Expected a single integer"}}}
	}
	return int(n), nil
}

// NextPageToken returns an opaque token of the filter input at the page
// after p, or "" if p is the last page. Definition.DecodePageToken turns
// the token back into input.
func (f *Filter) NextPageToken(p *paginator.Paginator) (string, error) {
	if !p.HasNextPage() {
		return "", nil
	}
	data := maps.Clone(f.data)
	delete(data, pageKey)
	return token.Encode(token.Payload{
		Filter: f.def.name,
		Page:   p.NextPage().Page(),
		Data:   data,
	})
}
