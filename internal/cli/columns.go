package cli

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/table"
)

// Column keys are the backend's JSON field names, so they double as sort
// and filter parameters.

func taskColumns() []table.Column[domain.Task] {
	return []table.Column[domain.Task]{
		{Key: "code", Title: "CODE", Sortable: true, Filterable: true, FilterKind: table.FilterText, Locked: true,
			Cell: func(t domain.Task) string { return t.DisplayID() }},
		{Key: "title", Title: "TITLE", Sortable: true, Filterable: true, FilterKind: table.FilterText, Locked: true, Width: 40,
			Value: func(t domain.Task) any { return t.Title }},
		{Key: "status", Title: "STATUS", Sortable: true, Filterable: true, FilterKind: table.FilterText,
			Cell: func(t domain.Task) string { return formatter.TaskStatusPill(t.Status) }},
		{Key: "priority", Title: "PRIORITY", Sortable: true, Filterable: true, FilterKind: table.FilterText,
			Cell: func(t domain.Task) string { return formatter.PriorityBadge(t.Priority) }},
		{Key: "flowType", Title: "FLOW", Filterable: true, FilterKind: table.FilterText,
			Cell: func(t domain.Task) string { return formatter.FlowBadge(t.FlowType) }},
		{Key: "projectName", Title: "PROJECT", Sortable: true, Filterable: true, FilterKind: table.FilterText,
			Value: func(t domain.Task) any { return t.ProjectName }},
		{Key: "requesterName", Title: "REQUESTER", Sortable: true, Filterable: true, FilterKind: table.FilterText,
			Value: func(t domain.Task) any { return t.RequesterName }},
		{Key: "dueDate", Title: "DUE", Sortable: true, Filterable: true, FilterKind: table.FilterDate,
			Cell: func(t domain.Task) string { return formatter.DueDate(t.DueDate, t.Status) }},
		{Key: "attachmentCount", Title: "FILES", Sortable: true,
			Value: func(t domain.Task) any { return t.AttachmentCount }},
		{Key: "updatedAt", Title: "UPDATED", Sortable: true,
			Cell: func(t domain.Task) string { return formatter.HumanTimestamp(t.UpdatedAt) }},
	}
}

func deliveryGroupColumns() []table.Column[domain.DeliveryGroup] {
	return []table.Column[domain.DeliveryGroup]{
		{Key: "task.code", Title: "TASK", Sortable: true, Filterable: true, FilterKind: table.FilterText, Locked: true,
			Value: func(g domain.DeliveryGroup) any { return g.Task.Code }},
		{Key: "task.title", Title: "TITLE", Sortable: true, Filterable: true, FilterKind: table.FilterText, Width: 40,
			Value: func(g domain.DeliveryGroup) any { return g.Task.Title }},
		{Key: "task.status", Title: "TASK STATUS", Filterable: true, FilterKind: table.FilterText,
			Cell: func(g domain.DeliveryGroup) string { return formatter.TaskStatusPill(g.Task.Status) }},
		{Key: "task.flowType", Title: "FLOW", Filterable: true, FilterKind: table.FilterText,
			Cell: func(g domain.DeliveryGroup) string { return formatter.FlowBadge(g.Task.FlowType) }},
		{Key: "totalDeliveries", Title: "DELIVERIES", Sortable: true, Locked: true,
			Cell: deliveryCountCell},
		{Key: "latest", Title: "LATEST",
			Cell: func(g domain.DeliveryGroup) string {
				d, ok := g.Latest()
				if !ok {
					return formatter.Dim("--")
				}
				return formatter.DeliveryStatusPill(d.Status) + " " + formatter.Dim(formatter.Truncate(d.Title, 30))
			}},
	}
}

// deliveryCountCell shows the backend's count next to what was actually
// listed when the two disagree.
func deliveryCountCell(g domain.DeliveryGroup) string {
	if g.Mismatch() {
		return formatter.StyleYellow.Render(fmt.Sprintf("%d (%d listed) ⚠", g.TotalDeliveries, len(g.Deliveries)))
	}
	return strconv.Itoa(g.TotalDeliveries)
}

func billingColumns() []table.Column[domain.BillingPeriod] {
	return []table.Column[domain.BillingPeriod]{
		{Key: "id", Title: "ID", Sortable: true, Locked: true,
			Value: func(b domain.BillingPeriod) any { return b.ID }},
		{Key: "year", Title: "PERIOD", Sortable: true, Filterable: true, FilterKind: table.FilterNumber, Locked: true,
			Cell: func(b domain.BillingPeriod) string { return b.Label() }},
		{Key: "projectName", Title: "PROJECT", Sortable: true, Filterable: true, FilterKind: table.FilterText,
			Value: func(b domain.BillingPeriod) any { return b.ProjectName }},
		{Key: "status", Title: "STATUS", Sortable: true, Filterable: true, FilterKind: table.FilterText,
			Cell: func(b domain.BillingPeriod) string { return formatter.BillingStatusPill(b.Status) }},
		{Key: "taskCount", Title: "TASKS", Sortable: true,
			Value: func(b domain.BillingPeriod) any { return b.TaskCount }},
		{Key: "hours", Title: "HOURS", Sortable: true,
			Cell: func(b domain.BillingPeriod) string { return strconv.FormatFloat(b.Hours, 'f', 1, 64) }},
		{Key: "amount", Title: "AMOUNT", Sortable: true,
			Cell: func(b domain.BillingPeriod) string { return formatter.FormatAmount(b.Amount, "") }},
		{Key: "closedBy", Title: "CLOSED BY",
			Value: func(b domain.BillingPeriod) any { return b.ClosedBy }},
	}
}

func projectColumns() []table.Column[domain.Project] {
	return []table.Column[domain.Project]{
		{Key: "code", Title: "CODE", Sortable: true, Filterable: true, FilterKind: table.FilterText, Locked: true,
			Value: func(p domain.Project) any { return p.Code }},
		{Key: "name", Title: "NAME", Sortable: true, Filterable: true, FilterKind: table.FilterText, Locked: true,
			Cell: func(p domain.Project) string { return formatter.Bold(p.Name) }},
		{Key: "client", Title: "CLIENT", Sortable: true, Filterable: true, FilterKind: table.FilterText,
			Value: func(p domain.Project) any { return p.Client }},
		{Key: "active", Title: "ACTIVE", Filterable: true, FilterKind: table.FilterText,
			Value: func(p domain.Project) any { return p.Active }},
	}
}

func quoteColumns() []table.Column[domain.Quote] {
	return []table.Column[domain.Quote]{
		{Key: "number", Title: "NUMBER", Sortable: true, Filterable: true, FilterKind: table.FilterText, Locked: true,
			Value: func(q domain.Quote) any { return q.Number }},
		{Key: "projectName", Title: "PROJECT", Sortable: true, Filterable: true, FilterKind: table.FilterText,
			Value: func(q domain.Quote) any { return q.ProjectName }},
		{Key: "description", Title: "DESCRIPTION", Filterable: true, FilterKind: table.FilterText, Width: 40,
			Value: func(q domain.Quote) any { return q.Description }},
		{Key: "hours", Title: "HOURS", Sortable: true,
			Cell: func(q domain.Quote) string { return strconv.FormatFloat(q.Hours, 'f', 1, 64) }},
		{Key: "amount", Title: "AMOUNT", Sortable: true,
			Cell: func(q domain.Quote) string { return formatter.FormatAmount(q.Amount, q.Currency) }},
		{Key: "status", Title: "STATUS", Sortable: true, Filterable: true, FilterKind: table.FilterText,
			Cell: func(q domain.Quote) string { return formatter.QuoteStatusPill(q.Status) }},
		{Key: "issuedAt", Title: "ISSUED", Sortable: true, Filterable: true, FilterKind: table.FilterDate,
			Value: func(q domain.Quote) any { return q.IssuedAt }},
	}
}

func requesterColumns() []table.Column[domain.Requester] {
	return []table.Column[domain.Requester]{
		{Key: "name", Title: "NAME", Sortable: true, Filterable: true, FilterKind: table.FilterText, Locked: true,
			Value: func(r domain.Requester) any { return r.Name }},
		{Key: "email", Title: "EMAIL", Sortable: true, Filterable: true, FilterKind: table.FilterText,
			Value: func(r domain.Requester) any { return r.Email }},
		{Key: "department", Title: "DEPARTMENT", Sortable: true, Filterable: true, FilterKind: table.FilterText,
			Value: func(r domain.Requester) any { return r.Department }},
		{Key: "active", Title: "ACTIVE",
			Value: func(r domain.Requester) any { return r.Active }},
	}
}

func attachmentColumns() []table.Column[domain.Attachment] {
	return []table.Column[domain.Attachment]{
		{Key: "id", Title: "ID", Value: func(a domain.Attachment) any { return a.ID }},
		{Key: "fileName", Title: "FILE", Value: func(a domain.Attachment) any { return a.FileName }},
		{Key: "size", Title: "SIZE", Cell: func(a domain.Attachment) string { return formatter.FormatBytes(a.Size) }},
		{Key: "uploadedBy", Title: "BY", Value: func(a domain.Attachment) any { return a.UploadedBy }},
		{Key: "uploadedAt", Title: "UPLOADED", Cell: func(a domain.Attachment) string { return formatter.HumanTimestamp(a.UploadedAt) }},
	}
}

func itemColumns() []table.Column[domain.DeliveryItem] {
	return []table.Column[domain.DeliveryItem]{
		{Key: "id", Title: "ID", Value: func(i domain.DeliveryItem) any { return i.ID }},
		{Key: "kind", Title: "KIND", Cell: func(i domain.DeliveryItem) string { return formatter.FlowBadge(i.Kind()) }},
		{Key: "title", Title: "TITLE", Width: 40, Value: func(i domain.DeliveryItem) any { return i.Title }},
		{Key: "status", Title: "STATUS", Cell: func(i domain.DeliveryItem) string { return formatter.ItemStatusPill(i.Status) }},
		{Key: "detail", Title: "DETAIL", Cell: func(i domain.DeliveryItem) string { return itemSummary(i.Detail) }},
	}
}

// itemSummary is the one-line form of an item's kind-specific fields.
func itemSummary(d domain.ItemDetail) string {
	if d == nil {
		return formatter.Dim("unknown kind")
	}
	return domain.VisitItem[string](d, domain.ItemFuncs[string]{
		OnOperational: func(o domain.OperationalItem) string {
			s := formatter.Truncate(o.Procedure, 40)
			if o.Environment != "" {
				s += " @ " + o.Environment
			}
			return s
		},
		OnDevelopment: func(dv domain.DevelopmentItem) string {
			s := dv.Repository
			if dv.Branch != "" {
				s += ":" + dv.Branch
			}
			if dv.PullRequestURL != "" {
				s += " (PR)"
			}
			return s
		},
	})
}
