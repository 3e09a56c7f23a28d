package domain

import (
	"fmt"
	"time"
)

// BillingPeriod is one month of billable work for a project.
type BillingPeriod struct {
	ID          int64         `json:"id"`
	ProjectID   int64         `json:"projectId"`
	ProjectName string        `json:"projectName"`
	Year        int           `json:"year"`
	Month       int           `json:"month"`
	Status      BillingStatus `json:"status"`
	TaskCount   int           `json:"taskCount"`
	Hours       float64       `json:"hours"`
	Amount      float64       `json:"amount"`
	ClosedAt    *time.Time    `json:"closedAt,omitempty"`
	ClosedBy    string        `json:"closedBy,omitempty"`
}

// Label renders the period as "2025-03".
func (b *BillingPeriod) Label() string {
	return fmt.Sprintf("%04d-%02d", b.Year, b.Month)
}

// Closed reports whether the period no longer accepts changes.
func (b *BillingPeriod) Closed() bool {
	return b.Status == BillingClosed
}

// BillingPeriodInput opens a new billing period.
type BillingPeriodInput struct {
	ProjectID int64 `json:"projectId" validate:"required,gt=0"`
	Year      int   `json:"year" validate:"required,gte=2000,lte=2100"`
	Month     int   `json:"month" validate:"required,gte=1,lte=12"`
}

// ReportFileName is the default local name for a period's PDF report.
func (b *BillingPeriod) ReportFileName() string {
	return fmt.Sprintf("billing-%d-%s.pdf", b.ProjectID, b.Label())
}
