package sqlfilter

import (
	"strings"

	"github.com/hugr-lab/sqlfilter/expr"
	"github.com/hugr-lab/sqlfilter/query"
)

const orderByKey = "order_by"

// OrderBy orders q by the "order_by" input value, or by the definition
// default when the input has none.
//
// A string is a comma-separated list of column names, each optionally
// prefixed with '-' for descending order; blank entries are ignored. Lists
// of strings and expr.Order values are accepted too. Returns
// *OrderByError for a column the model does not have, and q unchanged if
// no ordering is requested.
func (f *Filter) OrderBy(q query.Query) (query.Query, error) {
	spec, ok := f.data[orderByKey]
	if !ok {
		spec = f.def.orderBy
	}

	orders, err := f.parseOrderBy(spec)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return q, nil
	}
	f.logger.Debug("Applying ordering", "filter", f.def.name, "terms", len(orders))
	return q.OrderBy(orders...), nil
}

func (f *Filter) parseOrderBy(spec any) ([]expr.Order, error) {
	var orders []expr.Order
	add := func(item any) error {
		switch v := item.(type) {
		case expr.Order:
			orders = append(orders, v)
		case *expr.Order:
			if v != nil {
				orders = append(orders, *v)
			}
		case string:
			o, ok, err := f.parseOrderToken(v)
			if err != nil {
				return err
			}
			if ok {
				orders = append(orders, o)
			}
		}
		return nil
	}

	switch v := spec.(type) {
	case nil:
		return nil, nil
	case string:
		for _, tok := range strings.Split(v, ",") {
			if err := add(tok); err != nil {
				return nil, err
			}
		}
	case []string:
		for _, tok := range v {
			if err := add(tok); err != nil {
				return nil, err
			}
		}
	case []expr.Order:
		orders = append(orders, v...)
	case []any:
		for _, item := range v {
			if err := add(item); err != nil {
				return nil, err
			}
		}
	default:
		if err := add(v); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// parseOrderToken resolves "name" or "-name" to an ordering term. Blank
// tokens yield ok == false.
func (f *Filter) parseOrderToken(tok string) (expr.Order, bool, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return expr.Order{}, false, nil
	}
	name, desc := strings.CutPrefix(tok, "-")
	name = strings.TrimSpace(name)

	col, ok := f.def.model.Column(name)
	if !ok {
		return expr.Order{}, false, &OrderByError{Model: f.def.model.Name(), Field: name}
	}
	if desc {
		return expr.Desc(col), true, nil
	}
	return expr.Asc(col), true, nil
}
