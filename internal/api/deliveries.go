package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/table"
)

type DeliveryService struct {
	c *Client
}

// ListGrouped returns deliveries grouped by task, one group per row.
func (s *DeliveryService) ListGrouped(ctx context.Context, q table.Query) (*domain.Page[domain.DeliveryGroup], error) {
	return List[domain.DeliveryGroup](ctx, s.c, "deliveries/grouped", q)
}

// Get returns a delivery with its items.
func (s *DeliveryService) Get(ctx context.Context, id int64) (*domain.Delivery, error) {
	var d domain.Delivery
	if err := s.c.get(ctx, idPath("/deliveries/%d", id), nil, &d); err != nil {
		return nil, fmt.Errorf("getting delivery %d: %w", id, err)
	}
	return &d, nil
}

func (s *DeliveryService) Create(ctx context.Context, in domain.DeliveryInput) (*domain.Delivery, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	var d domain.Delivery
	if err := s.c.send(ctx, http.MethodPost, "/deliveries", in, &d); err != nil {
		return nil, fmt.Errorf("creating delivery: %w", err)
	}
	return &d, nil
}

func (s *DeliveryService) UpdateStatus(ctx context.Context, id int64, status domain.DeliveryStatus) (*domain.Delivery, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown delivery status %q", domain.ErrInvalid, status)
	}
	var d domain.Delivery
	body := map[string]domain.DeliveryStatus{"status": status}
	if err := s.c.send(ctx, http.MethodPatch, idPath("/deliveries/%d/status", id), body, &d); err != nil {
		return nil, fmt.Errorf("changing status of delivery %d: %w", id, err)
	}
	return &d, nil
}

type DeliveryItemService struct {
	c *Client
}

func (s *DeliveryItemService) List(ctx context.Context, deliveryID int64) ([]domain.DeliveryItem, error) {
	var out []domain.DeliveryItem
	if err := s.c.get(ctx, idPath("/deliveries/%d/items", deliveryID), nil, &out); err != nil {
		return nil, fmt.Errorf("listing items of delivery %d: %w", deliveryID, err)
	}
	return out, nil
}

func (s *DeliveryItemService) Create(ctx context.Context, deliveryID int64, in domain.DeliveryItemInput) (*domain.DeliveryItem, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	var item domain.DeliveryItem
	if err := s.c.send(ctx, http.MethodPost, idPath("/deliveries/%d/items", deliveryID), in, &item); err != nil {
		return nil, fmt.Errorf("adding item to delivery %d: %w", deliveryID, err)
	}
	return &item, nil
}

// Patch applies the non-nil fields of p.
func (s *DeliveryItemService) Patch(ctx context.Context, id int64, p domain.ItemPatch) (*domain.DeliveryItem, error) {
	if p.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalid)
	}
	if err := domain.Validate(p); err != nil {
		return nil, err
	}
	var item domain.DeliveryItem
	if err := s.c.send(ctx, http.MethodPatch, idPath("/delivery-items/%d", id), p, &item); err != nil {
		return nil, fmt.Errorf("updating delivery item %d: %w", id, err)
	}
	return &item, nil
}

func (s *DeliveryItemService) UpdateStatus(ctx context.Context, id int64, status domain.ItemStatus) (*domain.DeliveryItem, error) {
	return s.Patch(ctx, id, domain.ItemPatch{Status: &status})
}

func (s *DeliveryItemService) SetBranch(ctx context.Context, id int64, branch string) (*domain.DeliveryItem, error) {
	return s.Patch(ctx, id, domain.ItemPatch{Branch: &branch})
}

func (s *DeliveryItemService) SetPullRequest(ctx context.Context, id int64, url string) (*domain.DeliveryItem, error) {
	return s.Patch(ctx, id, domain.ItemPatch{PullRequestURL: &url})
}

func (s *DeliveryItemService) SetNotes(ctx context.Context, id int64, notes string) (*domain.DeliveryItem, error) {
	return s.Patch(ctx, id, domain.ItemPatch{Notes: &notes})
}
