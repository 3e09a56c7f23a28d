package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/taskdesk/internal/domain"
)

var fixtureIDs atomic.Int64

func nextFixtureID() int64 { return 5000 + fixtureIDs.Add(1) }

// Task options
type TaskOption func(*domain.Task)

func WithTaskID(id int64) TaskOption {
	return func(t *domain.Task) {
		t.ID = id
		t.Code = fmt.Sprintf("TSK-%d", id)
	}
}

func WithTaskStatus(s domain.TaskStatus) TaskOption {
	return func(t *domain.Task) { t.Status = s }
}

func NewTestTask(title string, opts ...TaskOption) domain.Task {
	id := nextFixtureID()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Minute)
	t := domain.Task{
		ID:            id,
		Code:          fmt.Sprintf("TSK-%d", id),
		Title:         title,
		Status:        domain.TaskOpen,
		Priority:      domain.PriorityMedium,
		FlowType:      domain.FlowDevelopment,
		RequesterID:   1,
		RequesterName: "Ana Souza",
		ProjectID:     1,
		ProjectName:   "Alpha Portal",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Delivery options
type DeliveryOption func(*domain.Delivery)

func WithItems(items ...domain.DeliveryItem) DeliveryOption {
	return func(d *domain.Delivery) {
		for i := range items {
			items[i].DeliveryID = d.ID
		}
		d.Items = append(d.Items, items...)
		d.ItemCount = len(d.Items)
	}
}

func NewTestDelivery(task domain.Task, title string, opts ...DeliveryOption) domain.Delivery {
	id := nextFixtureID()
	d := domain.Delivery{
		ID:        id,
		TaskID:    task.ID,
		TaskCode:  task.Code,
		TaskTitle: task.Title,
		Title:     title,
		Status:    domain.DeliveryPending,
		CreatedAt: task.CreatedAt.Add(time.Duration(id) * time.Second),
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// NewDevItem returns a development item on branch.
func NewDevItem(title, branch string) domain.DeliveryItem {
	return domain.DeliveryItem{
		ID:     nextFixtureID(),
		Title:  title,
		Status: domain.ItemInProgress,
		Detail: domain.DevelopmentItem{Repository: "web-app", Branch: branch},
	}
}

// NewOpsItem returns an operational item run in env.
func NewOpsItem(title, env string) domain.DeliveryItem {
	return domain.DeliveryItem{
		ID:     nextFixtureID(),
		Title:  title,
		Status: domain.ItemPending,
		Detail: domain.OperationalItem{Procedure: "runbook " + title, Environment: env},
	}
}

// NewTestGroup groups deliveries under task with an exact total.
func NewTestGroup(task domain.Task, total int, deliveries ...domain.Delivery) domain.DeliveryGroup {
	return domain.DeliveryGroup{
		Task:            domain.TaskSummary{ID: task.ID, Code: task.Code, Title: task.Title, Status: task.Status, FlowType: task.FlowType},
		Deliveries:      deliveries,
		TotalDeliveries: total,
	}
}

func NewTestBillingPeriod(projectID int64, year, month int, status domain.BillingStatus) domain.BillingPeriod {
	return domain.BillingPeriod{
		ID:          nextFixtureID(),
		ProjectID:   projectID,
		ProjectName: "Alpha Portal",
		Year:        year,
		Month:       month,
		Status:      status,
		TaskCount:   3,
		Hours:       42.5,
		Amount:      4250,
	}
}
