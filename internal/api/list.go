package api

import (
	"context"
	"fmt"

	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/table"
)

// List fetches one page of resource for q:
// GET /{resource}?page&size&sort={field},{dir}&{filter}={value}.
func List[T any](ctx context.Context, c *Client, resource string, q table.Query) (*domain.Page[T], error) {
	var page domain.Page[T]
	if err := c.get(ctx, "/"+resource, q.Values(), &page); err != nil {
		return nil, fmt.Errorf("listing %s: %w", resource, err)
	}
	if page.Content == nil {
		page.Content = []T{}
	}
	return &page, nil
}

// All walks every page of resource. Intended for small reference lists
// used in pickers; it stops after maxPages.
func All[T any](ctx context.Context, c *Client, resource string, q table.Query, maxPages int) ([]T, error) {
	var out []T
	q.Page = 0
	for i := 0; i < maxPages; i++ {
		page, err := List[T](ctx, c, resource, q)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Content...)
		if page.CurrentPage+1 >= page.TotalPages || page.Empty() {
			break
		}
		q.Page = page.CurrentPage + 1
	}
	return out, nil
}

// PageInfo converts the envelope's pagination fields for a table controller.
func PageInfo[T any](p *domain.Page[T]) table.PageInfo {
	return table.PageInfo{
		CurrentPage:   p.CurrentPage,
		PageSize:      p.PageSize,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
	}
}
