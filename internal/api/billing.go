package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/table"
)

type BillingService struct {
	c *Client
}

func (s *BillingService) List(ctx context.Context, q table.Query) (*domain.Page[domain.BillingPeriod], error) {
	return List[domain.BillingPeriod](ctx, s.c, "billing-periods", q)
}

func (s *BillingService) Get(ctx context.Context, id int64) (*domain.BillingPeriod, error) {
	var b domain.BillingPeriod
	if err := s.c.get(ctx, idPath("/billing-periods/%d", id), nil, &b); err != nil {
		return nil, fmt.Errorf("getting billing period %d: %w", id, err)
	}
	return &b, nil
}

func (s *BillingService) Create(ctx context.Context, in domain.BillingPeriodInput) (*domain.BillingPeriod, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	var b domain.BillingPeriod
	if err := s.c.send(ctx, http.MethodPost, "/billing-periods", in, &b); err != nil {
		return nil, fmt.Errorf("opening billing period: %w", err)
	}
	return &b, nil
}

// Close locks the period. Closing a closed period is ErrConflict.
func (s *BillingService) Close(ctx context.Context, id int64) (*domain.BillingPeriod, error) {
	return s.transition(ctx, id, "close")
}

func (s *BillingService) Reopen(ctx context.Context, id int64) (*domain.BillingPeriod, error) {
	return s.transition(ctx, id, "reopen")
}

func (s *BillingService) transition(ctx context.Context, id int64, action string) (*domain.BillingPeriod, error) {
	var b domain.BillingPeriod
	path := fmt.Sprintf("/billing-periods/%d/%s", id, action)
	if err := s.c.send(ctx, http.MethodPost, path, nil, &b); err != nil {
		return nil, fmt.Errorf("%s billing period %d: %w", action, id, err)
	}
	return &b, nil
}

// Report streams the period's PDF report into w.
func (s *BillingService) Report(ctx context.Context, id int64, w io.Writer) error {
	err := s.c.do(ctx, call{
		method: http.MethodGet,
		path:   idPath("/billing-periods/%d/report", id),
		accept: "application/pdf",
		sink:   w,
	})
	if err != nil {
		return fmt.Errorf("downloading report for billing period %d: %w", id, err)
	}
	return nil
}

// ReportTo writes the period's report into dir and returns the file path.
func (s *BillingService) ReportTo(ctx context.Context, b domain.BillingPeriod, dir string) (string, error) {
	return writeFile(filepath.Join(dir, b.ReportFileName()), func(w io.Writer) error {
		return s.Report(ctx, b.ID, w)
	})
}
