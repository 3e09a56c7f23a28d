package domain

// Page is the envelope the backend wraps every paginated listing in.
// CurrentPage is zero-based.
type Page[T any] struct {
	Content       []T `json:"content"`
	CurrentPage   int `json:"currentPage"`
	TotalPages    int `json:"totalPages"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

// Empty reports whether the page holds no records.
func (p *Page[T]) Empty() bool {
	return len(p.Content) == 0
}
