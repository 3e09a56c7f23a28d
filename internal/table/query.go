package table

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// DefaultPageSize is used when a Query has no size.
const DefaultPageSize = 10

// Query is the caller-owned request state for one table: the page, page
// size, sort and filters that the next fetch will send.
type Query struct {
	Page    int
	Size    int
	Sort    Sort
	Filters Filters
}

// NewQuery returns the first page of size size, unsorted and unfiltered.
func NewQuery(size int) Query {
	if size <= 0 {
		size = DefaultPageSize
	}
	return Query{Size: size, Filters: Filters{}}
}

// Apply returns the query that results from in. Any change to size, sort or
// filters returns to page 0, since the old offset no longer points at the
// same records. Visibility changes leave the query untouched.
func (q Query) Apply(in Intent) Query {
	next := q.clone()
	switch in := in.(type) {
	case PageChanged:
		next.Page = in.Page
	case PageSizeChanged:
		if in.Size > 0 {
			next.Size = in.Size
		}
		next.Page = 0
	case SortChanged:
		next.Sort = Sort{{Field: in.Field, Direction: in.Direction}}
		next.Page = 0
	case FilterChanged:
		if in.Value == "" {
			delete(next.Filters, in.Field)
		} else {
			next.Filters[in.Field] = in.Value
		}
		next.Page = 0
	case FiltersCleared:
		next.Filters = Filters{}
		next.Page = 0
	}
	return next
}

func (q Query) clone() Query {
	out := q
	out.Sort = append(Sort(nil), q.Sort...)
	out.Filters = make(Filters, len(q.Filters))
	for k, v := range q.Filters {
		out.Filters[k] = v
	}
	return out
}

// Values encodes the query as URL parameters:
// page, size, sort={field},{dir} and one parameter per non-blank filter.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	size := q.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	v.Set("size", strconv.Itoa(size))
	for _, s := range q.Sort {
		if s.Field == "" {
			continue
		}
		dir := s.Direction
		if dir != Desc {
			dir = Asc
		}
		v.Add("sort", s.Field+","+string(dir))
	}
	active := q.Filters.Active()
	keys := make([]string, 0, len(active))
	for k := range active {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v.Set(k, active[k])
	}
	return v
}

// ParseSort reads "field,dir" (dir optional, default asc).
func ParseSort(s string) (SortField, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SortField{}, false
	}
	field, dir, _ := strings.Cut(s, ",")
	field = strings.TrimSpace(field)
	if field == "" {
		return SortField{}, false
	}
	d := Asc
	if strings.EqualFold(strings.TrimSpace(dir), string(Desc)) {
		d = Desc
	}
	return SortField{Field: field, Direction: d}, true
}
