// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultLimit is the page size used when the client does not ask for one.
const DefaultLimit = 10

// MaxLimit caps client-requested page sizes.
const MaxLimit = 100

// Page is a 1-based page request.
type Page struct {
	Number int
	Limit  int
}

// Pagination is the metadata returned alongside a list.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	HasNextPage bool `json:"hasNextPage"`
	Limit       int  `json:"limit"`
}

// Parse reads "page" and "limit" from the query string. Missing or invalid
// values fall back to page 1 and DefaultLimit.
func Parse(r *http.Request) Page {
	return Page{
		Number: parsePositive(query.Get(r, "page"), 1),
		Limit:  clamp(parsePositive(query.Get(r, "limit"), DefaultLimit), MaxLimit),
	}
}

func parsePositive(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func clamp(n, max int) int {
	if n > max {
		return max
	}
	return n
}

// Skip returns the number of rows before this page.
func (p Page) Skip() int64 { return int64((p.Number - 1) * p.Limit) }

// LimitPlusOne returns Limit+1 for look-ahead pagination
// (fetch one extra document to detect hasNext).
func (p Page) LimitPlusOne() int64 { return int64(p.Limit + 1) }

// FindOptions returns skip/limit look-ahead options sorted by sort, with
// _id as a tiebreaker so pages are stable.
func (p Page) FindOptions(sort bson.D) *options.FindOptions {
	dir := any(1)
	if len(sort) > 0 {
		dir = sort[len(sort)-1].Value
	}
	withID := append(bson.D{}, sort...)
	withID = append(withID, bson.E{Key: "_id", Value: dir})
	return options.Find().
		SetSort(withID).
		SetSkip(p.Skip()).
		SetLimit(p.LimitPlusOne())
}

// Trim cuts a look-ahead result down to the page size in place and returns
// the pagination metadata.
func Trim[T any](rows *[]T, p Page) Pagination {
	hasNext := false
	if len(*rows) > p.Limit {
		*rows = (*rows)[:p.Limit]
		hasNext = true
	}
	return Pagination{CurrentPage: p.Number, HasNextPage: hasNext, Limit: p.Limit}
}
