package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownFlowType marks a flow type this client has no ItemDetail for.
// Decoding keeps such items with a nil Detail instead of failing.
var ErrUnknownFlowType = errors.New("unknown delivery item flow type")

// Delivery groups the items handed over for one task.
type Delivery struct {
	ID          int64          `json:"id"`
	TaskID      int64          `json:"taskId"`
	TaskCode    string         `json:"taskCode"`
	TaskTitle   string         `json:"taskTitle"`
	Title       string         `json:"title"`
	Status      DeliveryStatus `json:"status"`
	DeliveredAt *Date          `json:"deliveredAt,omitempty"`
	Notes       string         `json:"notes"`
	ItemCount   int            `json:"itemCount"`
	Items       []DeliveryItem `json:"items,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// TaskSummary is the slice of a task embedded in grouped responses.
type TaskSummary struct {
	ID       int64      `json:"id"`
	Code     string     `json:"code"`
	Title    string     `json:"title"`
	Status   TaskStatus `json:"status"`
	FlowType FlowType   `json:"flowType"`
}

// DeliveryGroup is one row of the grouped-deliveries listing.
type DeliveryGroup struct {
	Task            TaskSummary `json:"task"`
	Deliveries      []Delivery  `json:"deliveries"`
	TotalDeliveries int         `json:"totalDeliveries"`
}

// Mismatch reports whether TotalDeliveries disagrees with the deliveries
// actually sent.
func (g DeliveryGroup) Mismatch() bool {
	return g.TotalDeliveries != len(g.Deliveries)
}

// Latest returns the most recently created delivery of the group.
func (g DeliveryGroup) Latest() (Delivery, bool) {
	if len(g.Deliveries) == 0 {
		return Delivery{}, false
	}
	latest := g.Deliveries[0]
	for _, d := range g.Deliveries[1:] {
		if d.CreatedAt.After(latest.CreatedAt) {
			latest = d
		}
	}
	return latest, true
}

// DeliveryInput is the create payload for a delivery.
type DeliveryInput struct {
	TaskID int64               `json:"taskId" validate:"required,gt=0"`
	Title  string              `json:"title" validate:"required,min=3,max=200"`
	Notes  string              `json:"notes" validate:"max=2000"`
	Items  []DeliveryItemInput `json:"items" validate:"dive"`
}

// ── delivery items ──────────────────────────────────────────────────────────

// ItemDetail is the kind-specific part of a delivery item. It is sealed:
// OperationalItem and DevelopmentItem are the only implementations.
type ItemDetail interface {
	Kind() FlowType
	isItemDetail()
}

// OperationalItem is work executed against an environment.
type OperationalItem struct {
	Procedure   string `validate:"required,max=500"`
	Environment string `validate:"max=100"`
	ExecutedAt  *Date
}

// DevelopmentItem is code delivered through a branch and pull request.
type DevelopmentItem struct {
	Repository     string `validate:"required,max=200"`
	Branch         string `validate:"omitempty,max=255,excludesall= ~^:?*[\\"`
	PullRequestURL string `validate:"omitempty,url"`
	Version        string `validate:"max=50"`
}

func (OperationalItem) Kind() FlowType { return FlowOperational }
func (DevelopmentItem) Kind() FlowType { return FlowDevelopment }
func (OperationalItem) isItemDetail()  {}
func (DevelopmentItem) isItemDetail()  {}

// ItemVisitor handles every delivery item kind. Adding a kind adds a method
// here, so every consumer stops compiling until it handles the new kind.
type ItemVisitor[R any] interface {
	Operational(OperationalItem) R
	Development(DevelopmentItem) R
}

// VisitItem dispatches d to the matching visitor method.
func VisitItem[R any](d ItemDetail, v ItemVisitor[R]) R {
	switch d := d.(type) {
	case OperationalItem:
		return v.Operational(d)
	case *OperationalItem:
		return v.Operational(*d)
	case DevelopmentItem:
		return v.Development(d)
	case *DevelopmentItem:
		return v.Development(*d)
	}
	panic(fmt.Sprintf("domain: unhandled item detail %T", d))
}

// ItemFuncs adapts two functions to an ItemVisitor.
type ItemFuncs[R any] struct {
	OnOperational func(OperationalItem) R
	OnDevelopment func(DevelopmentItem) R
}

func (f ItemFuncs[R]) Operational(o OperationalItem) R { return f.OnOperational(o) }
func (f ItemFuncs[R]) Development(d DevelopmentItem) R { return f.OnDevelopment(d) }

// DeliveryItem is one deliverable inside a delivery.
type DeliveryItem struct {
	ID         int64
	DeliveryID int64
	Title      string
	Status     ItemStatus
	Notes      string
	UpdatedAt  time.Time
	Detail     ItemDetail
	// UnknownFlow holds the wire flow type when Detail is nil because the
	// kind is not one this client knows.
	UnknownFlow FlowType
}

// Kind returns the item's flow type.
func (i DeliveryItem) Kind() FlowType {
	if i.Detail == nil {
		return ""
	}
	return i.Detail.Kind()
}

// itemWire is the flat JSON shape the backend uses for both kinds.
type itemWire struct {
	ID             int64      `json:"id,omitempty"`
	DeliveryID     int64      `json:"deliveryId,omitempty"`
	Title          string     `json:"title"`
	Status         ItemStatus `json:"status,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
	FlowType       FlowType   `json:"flowType"`
	Procedure      string     `json:"procedure,omitempty"`
	Environment    string     `json:"environment,omitempty"`
	ExecutedAt     *Date      `json:"executedAt,omitempty"`
	Repository     string     `json:"repository,omitempty"`
	Branch         string     `json:"branch,omitempty"`
	PullRequestURL string     `json:"pullRequest,omitempty"`
	Version        string     `json:"version,omitempty"`
}

func (w *itemWire) setDetail(d ItemDetail) {
	if d == nil {
		return
	}
	w.FlowType = d.Kind()
	VisitItem[struct{}](d, ItemFuncs[struct{}]{
		OnOperational: func(o OperationalItem) struct{} {
			w.Procedure, w.Environment, w.ExecutedAt = o.Procedure, o.Environment, o.ExecutedAt
			return struct{}{}
		},
		OnDevelopment: func(dv DevelopmentItem) struct{} {
			w.Repository, w.Branch, w.PullRequestURL, w.Version = dv.Repository, dv.Branch, dv.PullRequestURL, dv.Version
			return struct{}{}
		},
	})
}

func (w itemWire) detail() (ItemDetail, error) {
	switch w.FlowType {
	case FlowOperational:
		return OperationalItem{Procedure: w.Procedure, Environment: w.Environment, ExecutedAt: w.ExecutedAt}, nil
	case FlowDevelopment:
		return DevelopmentItem{Repository: w.Repository, Branch: w.Branch, PullRequestURL: w.PullRequestURL, Version: w.Version}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFlowType, w.FlowType)
}

func (i DeliveryItem) MarshalJSON() ([]byte, error) {
	w := itemWire{
		ID:         i.ID,
		DeliveryID: i.DeliveryID,
		Title:      i.Title,
		Status:     i.Status,
		Notes:      i.Notes,
	}
	if !i.UpdatedAt.IsZero() {
		w.UpdatedAt = &i.UpdatedAt
	}
	w.setDetail(i.Detail)
	if i.Detail == nil {
		w.FlowType = i.UnknownFlow
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the flat wire form. An unknown flowType leaves
// Detail nil so one odd item does not fail the whole delivery.
func (i *DeliveryItem) UnmarshalJSON(data []byte) error {
	var w itemWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	d, err := w.detail()
	if err != nil && !errors.Is(err, ErrUnknownFlowType) {
		return err
	}
	*i = DeliveryItem{
		ID:         w.ID,
		DeliveryID: w.DeliveryID,
		Title:      w.Title,
		Status:     w.Status,
		Notes:      w.Notes,
		Detail:     d,
	}
	if d == nil {
		i.UnknownFlow = w.FlowType
	}
	if w.UpdatedAt != nil {
		i.UpdatedAt = *w.UpdatedAt
	}
	return nil
}

// DeliveryItemInput is the create payload for one item.
type DeliveryItemInput struct {
	Title  string     `validate:"required,max=200"`
	Notes  string     `validate:"max=2000"`
	Detail ItemDetail `validate:"-"`
}

func (in DeliveryItemInput) MarshalJSON() ([]byte, error) {
	w := itemWire{Title: in.Title, Notes: in.Notes}
	w.setDetail(in.Detail)
	return json.Marshal(w)
}

// ItemPatch updates selected fields of a delivery item. Nil fields are left
// unchanged by the backend.
type ItemPatch struct {
	Status         *ItemStatus `json:"status,omitempty" validate:"omitempty,oneof=PENDING IN_PROGRESS IN_REVIEW DONE BLOCKED"`
	Branch         *string     `json:"branch,omitempty" validate:"omitempty,max=255,excludesall= ~^:?*[\\"`
	PullRequestURL *string     `json:"pullRequest,omitempty" validate:"omitempty,url"`
	Notes          *string     `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// Empty reports whether the patch changes nothing.
func (p ItemPatch) Empty() bool {
	return p.Status == nil && p.Branch == nil && p.PullRequestURL == nil && p.Notes == nil
}

// DevOnly reports whether the patch touches development-only fields.
func (p ItemPatch) DevOnly() bool {
	return p.Branch != nil || p.PullRequestURL != nil
}
