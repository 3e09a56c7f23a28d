// Package table holds the state behind every paginated, sortable and
// filterable list in taskdesk.
//
// A Controller never fetches or slices data. It turns user gestures into
// Intents; the owning view applies them to a Query, re-fetches the page and
// mirrors the resulting sort and pagination back into the Controller.
package table

import (
	"fmt"
	"reflect"
	"time"
)

// FilterKind describes how a filterable column's input should be read.
type FilterKind string

const (
	FilterText   FilterKind = "text"
	FilterNumber FilterKind = "number"
	FilterDate   FilterKind = "date"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// Column describes one column of a table over records of type T.
type Column[T any] struct {
	Key        string
	Title      string
	Sortable   bool
	Filterable bool
	FilterKind FilterKind

	// Locked columns can never be hidden.
	Locked bool

	// Width is a rendering hint; zero means size to content.
	Width int

	// Value extracts the raw field used by the default cell renderer.
	Value func(T) any

	// Cell overrides the default stringification of Value.
	Cell func(T) string

	// Header overrides the column title in the header row.
	Header func(Column[T]) string
}

// HeaderText returns the custom header if one is set, otherwise the title.
func (c Column[T]) HeaderText() string {
	if c.Header != nil {
		return c.Header(c)
	}
	return c.Title
}

// Text renders the cell for rec.
func (c Column[T]) Text(rec T) string {
	if c.Cell != nil {
		return c.Cell(rec)
	}
	if c.Value == nil {
		return ""
	}
	return stringify(c.Value(rec))
}

func stringify(v any) string {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return ""
	}
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format("2006-01-02")
	case *time.Time:
		if x == nil || x.IsZero() {
			return ""
		}
		return x.Format("2006-01-02")
	case bool:
		if x {
			return "yes"
		}
		return "no"
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
