package api

import (
	"context"
	"fmt"

	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/table"
)

// pickerPages bounds how much of a reference list All fetches.
const pickerPages = 20

// CatalogService serves a read-only reference resource.
type CatalogService[T any] struct {
	c        *Client
	resource string
}

func (s *CatalogService[T]) List(ctx context.Context, q table.Query) (*domain.Page[T], error) {
	return List[T](ctx, s.c, s.resource, q)
}

func (s *CatalogService[T]) Get(ctx context.Context, id int64) (*T, error) {
	var out T
	if err := s.c.get(ctx, fmt.Sprintf("/%s/%d", s.resource, id), nil, &out); err != nil {
		return nil, fmt.Errorf("getting %s %d: %w", s.resource, id, err)
	}
	return &out, nil
}

// All returns every record, for pickers. filters narrows the listing.
func (s *CatalogService[T]) All(ctx context.Context, filters table.Filters) ([]T, error) {
	q := table.NewQuery(100)
	for k, v := range filters {
		q.Filters[k] = v
	}
	return All[T](ctx, s.c, s.resource, q, pickerPages)
}
