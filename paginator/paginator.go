// Package paginator slices a query into pages.
//
// A Paginator counts the rows of its query once, when created. Navigation
// returns new paginators that reuse the count:
//
//	p, err := paginator.New(ctx, q, 1, 10)
//	for {
//	    rows, err := p.Objects(ctx)
//	    ...
//	    if !p.HasNextPage() {
//	        break
//	    }
//	    p = p.NextPage()
//	}
package paginator

import (
	"context"
	"fmt"

	"github.com/hugr-lab/sqlfilter/query"
)

// Page describes a paginator for API responses.
type Page struct {
	Count       int  `json:"count"`
	PageSize    int  `json:"page_size"`
	Page        int  `json:"page"`
	NumPages    int  `json:"num_pages"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

// Paginator is one page of a query. Pages are 1-based.
// Paginator is immutable and safe for concurrent use.
type Paginator struct {
	query    query.Query
	count    int
	page     int
	pageSize int
	numPages int
}

// New counts the rows of q and returns the paginator at page.
//
// A pageSize of 0 puts every row on a single page. page is clamped to a
// minimum of 1 and forced to 1 when the page size covers every row.
func New(ctx context.Context, q query.Query, page, pageSize int) (*Paginator, error) {
	if q == nil {
		return nil, fmt.Errorf("paginator: query is required")
	}
	count, err := q.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("paginator: %w", err)
	}
	return newPaginator(q, count, page, pageSize), nil
}

func newPaginator(q query.Query, count, page, pageSize int) *Paginator {
	if pageSize <= 0 {
		pageSize = count
	}
	if page < 1 || pageSize == count {
		page = 1
	}

	numPages := 1
	if pageSize > 0 && count > pageSize {
		numPages = (count + pageSize - 1) / pageSize
	}

	return &Paginator{
		query:    q,
		count:    count,
		page:     page,
		pageSize: pageSize,
		numPages: numPages,
	}
}

// Query returns the unsliced query.
func (p *Paginator) Query() query.Query { return p.query }

// Count returns the total number of rows.
func (p *Paginator) Count() int { return p.count }

// Page returns the current page number.
func (p *Paginator) Page() int { return p.page }

// PageSize returns the effective page size.
func (p *Paginator) PageSize() int { return p.pageSize }

// NumPages returns the number of pages.
func (p *Paginator) NumPages() int { return p.numPages }

// HasNextPage reports whether the current page is not the last one.
func (p *Paginator) HasNextPage() bool {
	return p.numPages > p.page
}

// HasPreviousPage reports whether the current page is not the first one.
func (p *Paginator) HasPreviousPage() bool {
	return p.page > 1
}

// NextPage returns the paginator of the next page, or p on the last page.
func (p *Paginator) NextPage() *Paginator {
	if !p.HasNextPage() {
		return p
	}
	return newPaginator(p.query, p.count, p.page+1, p.pageSize)
}

// PreviousPage returns the paginator of the previous page, or p on the
// first page.
func (p *Paginator) PreviousPage() *Paginator {
	if !p.HasPreviousPage() {
		return p
	}
	return newPaginator(p.query, p.count, p.page-1, p.pageSize)
}

// SlicedQuery returns the query limited to the current page.
func (p *Paginator) SlicedQuery() query.Query {
	return p.query.Limit(p.pageSize).Offset((p.page - 1) * p.pageSize)
}

// Objects executes the sliced query.
func (p *Paginator) Objects(ctx context.Context) ([]query.Row, error) {
	return p.SlicedQuery().All(ctx)
}

// JSON returns the description of the paginator.
func (p *Paginator) JSON() Page {
	return Page{
		Count:       p.count,
		PageSize:    p.pageSize,
		Page:        p.page,
		NumPages:    p.numPages,
		HasNextPage: p.HasNextPage(),
		HasPrevPage: p.HasPreviousPage(),
	}
}
