package domain

type TaskStatus string

const (
	TaskOpen       TaskStatus = "OPEN"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
	TaskCancelled  TaskStatus = "CANCELLED"
)

// TaskStatuses lists task statuses in workflow order.
var TaskStatuses = []TaskStatus{TaskOpen, TaskInProgress, TaskDone, TaskCancelled}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskOpen, TaskInProgress, TaskDone, TaskCancelled:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// FlowType separates operational work from development work. It decides
// which kind of delivery item a task produces.
type FlowType string

const (
	FlowOperational FlowType = "OPERATIONAL"
	FlowDevelopment FlowType = "DEVELOPMENT"
)

func (f FlowType) Valid() bool {
	return f == FlowOperational || f == FlowDevelopment
}

type DeliveryStatus string

const (
	DeliveryPending    DeliveryStatus = "PENDING"
	DeliveryInProgress DeliveryStatus = "IN_PROGRESS"
	DeliveryDelivered  DeliveryStatus = "DELIVERED"
	DeliveryApproved   DeliveryStatus = "APPROVED"
	DeliveryRejected   DeliveryStatus = "REJECTED"
)

var DeliveryStatuses = []DeliveryStatus{
	DeliveryPending, DeliveryInProgress, DeliveryDelivered, DeliveryApproved, DeliveryRejected,
}

func (s DeliveryStatus) Valid() bool {
	for _, v := range DeliveryStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type ItemStatus string

const (
	ItemPending    ItemStatus = "PENDING"
	ItemInProgress ItemStatus = "IN_PROGRESS"
	ItemInReview   ItemStatus = "IN_REVIEW"
	ItemDone       ItemStatus = "DONE"
	ItemBlocked    ItemStatus = "BLOCKED"
)

var ItemStatuses = []ItemStatus{ItemPending, ItemInProgress, ItemInReview, ItemDone, ItemBlocked}

func (s ItemStatus) Valid() bool {
	for _, v := range ItemStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "DRAFT"
	QuoteSent     QuoteStatus = "SENT"
	QuoteApproved QuoteStatus = "APPROVED"
	QuoteRejected QuoteStatus = "REJECTED"
)

type BillingStatus string

const (
	BillingOpen   BillingStatus = "OPEN"
	BillingClosed BillingStatus = "CLOSED"
)

func (s BillingStatus) Valid() bool {
	return s == BillingOpen || s == BillingClosed
}
