package table

import (
	"strings"
)

// SortField is one (field, direction) pair of a sort descriptor.
type SortField struct {
	Field     string
	Direction Direction
}

// Sort is an ordered sort descriptor. Controllers keep at most one entry.
type Sort []SortField

// Active returns the first sort entry, if any.
func (s Sort) Active() (SortField, bool) {
	if len(s) == 0 || s[0].Field == "" {
		return SortField{}, false
	}
	return s[0], true
}

// PageInfo mirrors the pagination fields of a server page envelope.
type PageInfo struct {
	CurrentPage   int
	PageSize      int
	TotalElements int
	TotalPages    int
}

// HasPrev reports whether a previous page exists.
func (p PageInfo) HasPrev() bool { return p.CurrentPage > 0 }

// HasNext reports whether a following page exists.
func (p PageInfo) HasNext() bool { return p.CurrentPage+1 < p.TotalPages }

// Filters maps a column key to its current text value.
type Filters map[string]string

// Active returns a copy holding only the non-blank filters, trimmed.
func (f Filters) Active() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		if v = strings.TrimSpace(v); v != "" {
			out[k] = v
		}
	}
	return out
}

// Indicator is the three-state sort marker shown in a column header.
type Indicator int

const (
	IndicatorNone Indicator = iota
	IndicatorAsc
	IndicatorDesc
)

// Controller manages column visibility and the local filter buffer of one
// table, and mirrors the sort and pagination owned by its caller.
type Controller[T any] struct {
	columns []Column[T]
	hidden  map[string]bool
	filters Filters
	sort    Sort
	page    PageInfo
}

// New creates a Controller over the given columns, all visible.
func New[T any](columns []Column[T]) *Controller[T] {
	return &Controller[T]{
		columns: columns,
		hidden:  make(map[string]bool),
		filters: make(Filters),
	}
}

// Columns returns every column in declaration order.
func (c *Controller[T]) Columns() []Column[T] { return c.columns }

// Column looks up a column by key.
func (c *Controller[T]) Column(key string) (Column[T], bool) {
	for _, col := range c.columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column[T]{}, false
}

// ── sorting ─────────────────────────────────────────────────────────────────

// RequestSort activates field ascending, or flips the direction when field is
// already active. The returned intent is nil for unknown or unsortable
// fields. The new sort is mirrored immediately so repeated requests
// alternate even before the caller syncs back.
func (c *Controller[T]) RequestSort(field string) Intent {
	col, ok := c.Column(field)
	if !ok || !col.Sortable {
		return nil
	}
	dir := Asc
	if active, ok := c.sort.Active(); ok && active.Field == field {
		dir = active.Direction.Flip()
	}
	c.sort = Sort{{Field: field, Direction: dir}}
	return SortChanged{Field: field, Direction: dir}
}

// Sort returns the mirrored sort descriptor.
func (c *Controller[T]) Sort() Sort { return c.sort }

// SyncSort mirrors the caller's sort. Only the first entry is kept.
func (c *Controller[T]) SyncSort(s Sort) {
	if len(s) > 1 {
		s = s[:1]
	}
	c.sort = append(Sort(nil), s...)
}

// Indicator returns the sort marker for field.
func (c *Controller[T]) Indicator(field string) Indicator {
	active, ok := c.sort.Active()
	if !ok || active.Field != field {
		return IndicatorNone
	}
	if active.Direction == Desc {
		return IndicatorDesc
	}
	return IndicatorAsc
}

// ── filtering ───────────────────────────────────────────────────────────────

// SetFilter stores value for field. Blank values remove the filter.
func (c *Controller[T]) SetFilter(field, value string) Intent {
	effective := strings.TrimSpace(value)
	if effective == "" {
		delete(c.filters, field)
	} else {
		c.filters[field] = value
	}
	return FilterChanged{Field: field, Value: effective}
}

// ClearFilter removes the filter on field.
func (c *Controller[T]) ClearFilter(field string) Intent {
	delete(c.filters, field)
	return FilterChanged{Field: field}
}

// ClearFilters removes every filter.
func (c *Controller[T]) ClearFilters() Intent {
	c.filters = make(Filters)
	return FiltersCleared{}
}

// Filter returns the raw buffered value for field.
func (c *Controller[T]) Filter(field string) string { return c.filters[field] }

// Filters returns a copy of the local filter buffer.
func (c *Controller[T]) Filters() Filters {
	out := make(Filters, len(c.filters))
	for k, v := range c.filters {
		out[k] = v
	}
	return out
}

// HasActiveFilters reports whether any filter holds a non-blank value.
func (c *Controller[T]) HasActiveFilters() bool {
	return len(c.filters.Active()) > 0
}

// ShowClear reports whether the clear affordance for field should render.
func (c *Controller[T]) ShowClear(field string) bool {
	return strings.TrimSpace(c.filters[field]) != ""
}

// SyncFilters replaces the local buffer with the caller's filters so the
// two never diverge, e.g. after the caller clears everything.
func (c *Controller[T]) SyncFilters(external Filters) {
	c.filters = make(Filters, len(external))
	for k, v := range external {
		if strings.TrimSpace(v) != "" {
			c.filters[k] = v
		}
	}
}

// ── pagination ──────────────────────────────────────────────────────────────

// ChangePage signals a move to a zero-based page. It does not clamp.
func (c *Controller[T]) ChangePage(page int) Intent {
	return PageChanged{Page: page}
}

// ChangePageSize signals a new page size.
func (c *Controller[T]) ChangePageSize(size int) Intent {
	return PageSizeChanged{Size: size}
}

// CanGoTo reports whether page is inside the mirrored page range.
func (c *Controller[T]) CanGoTo(page int) bool {
	return page >= 0 && page < c.page.TotalPages
}

// Page returns the mirrored pagination.
func (c *Controller[T]) Page() PageInfo { return c.page }

// SyncPage mirrors the caller's pagination.
func (c *Controller[T]) SyncPage(p PageInfo) { c.page = p }

// ── column visibility ───────────────────────────────────────────────────────

// ToggleColumn hides a visible column or shows a hidden one. Locked and
// unknown columns are left alone.
func (c *Controller[T]) ToggleColumn(key string) Intent {
	col, ok := c.Column(key)
	if !ok || col.Locked {
		return nil
	}
	if c.hidden[key] {
		delete(c.hidden, key)
	} else {
		c.hidden[key] = true
	}
	return VisibilityChanged{Hidden: c.Hidden()}
}

// ShowAllColumns clears the hidden set.
func (c *Controller[T]) ShowAllColumns() Intent {
	c.hidden = make(map[string]bool)
	return VisibilityChanged{}
}

// HideAllColumns hides every column that is not locked.
func (c *Controller[T]) HideAllColumns() Intent {
	for _, col := range c.columns {
		if !col.Locked {
			c.hidden[col.Key] = true
		}
	}
	return VisibilityChanged{Hidden: c.Hidden()}
}

// SetHidden restores a saved hidden set, ignoring locked or unknown keys.
func (c *Controller[T]) SetHidden(keys []string) {
	c.hidden = make(map[string]bool, len(keys))
	for _, k := range keys {
		if col, ok := c.Column(k); ok && !col.Locked {
			c.hidden[k] = true
		}
	}
}

// IsHidden reports whether key is in the hidden set.
func (c *Controller[T]) IsHidden(key string) bool { return c.hidden[key] }

// Hidden returns the hidden keys in column order.
func (c *Controller[T]) Hidden() []string {
	var keys []string
	for _, col := range c.columns {
		if c.hidden[col.Key] {
			keys = append(keys, col.Key)
		}
	}
	return keys
}

// VisibleColumns returns the columns not hidden, in declaration order.
func (c *Controller[T]) VisibleColumns() []Column[T] {
	visible := make([]Column[T], 0, len(c.columns))
	for _, col := range c.columns {
		if !c.hidden[col.Key] {
			visible = append(visible, col)
		}
	}
	return visible
}

// ── rendering ───────────────────────────────────────────────────────────────

// CellText renders one cell.
func (c *Controller[T]) CellText(col Column[T], rec T) string {
	return col.Text(rec)
}

// Rows renders the visible cells of every record.
func (c *Controller[T]) Rows(records []T) [][]string {
	cols := c.VisibleColumns()
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(cols))
		for i, col := range cols {
			row[i] = col.Text(rec)
		}
		rows = append(rows, row)
	}
	return rows
}
