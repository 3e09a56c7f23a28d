package table

// Intent is a signal from a Controller to the view that owns the data.
// The concrete types are SortChanged, FilterChanged, FiltersCleared,
// PageChanged, PageSizeChanged and VisibilityChanged.
type Intent interface {
	intent()
}

// SortChanged asks the caller to re-fetch sorted by Field in Direction.
type SortChanged struct {
	Field     string
	Direction Direction
}

// FilterChanged carries the effective (trimmed) value for one filter.
// An empty Value means the filter was removed.
type FilterChanged struct {
	Field string
	Value string
}

// FiltersCleared asks the caller to drop every filter.
type FiltersCleared struct{}

// PageChanged asks for a zero-based page. It is not clamped.
type PageChanged struct {
	Page int
}

// PageSizeChanged asks for a new page size.
type PageSizeChanged struct {
	Size int
}

// VisibilityChanged reports the hidden column keys after a toggle, in
// column order. It needs no re-fetch.
type VisibilityChanged struct {
	Hidden []string
}

func (SortChanged) intent()       {}
func (FilterChanged) intent()     {}
func (FiltersCleared) intent()    {}
func (PageChanged) intent()       {}
func (PageSizeChanged) intent()   {}
func (VisibilityChanged) intent() {}

// NeedsFetch reports whether the intent changes what the server returns.
func NeedsFetch(in Intent) bool {
	_, ok := in.(VisibilityChanged)
	return in != nil && !ok
}

// Debounced reports whether the caller should wait for typing to settle
// before fetching. Only filter edits are debounced; page, size and sort
// changes apply immediately.
func Debounced(in Intent) bool {
	_, ok := in.(FilterChanged)
	return ok
}
