package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// RelativeDateFrom returns a human-friendly relative date string from a reference time.
func RelativeDateFrom(t time.Time, now time.Time) string {
	diff := t.Sub(now)
	days := int(math.Round(diff.Hours() / 24))

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 0 && days < 14:
		return fmt.Sprintf("In %dd", days)
	case days > 0 && days < 60:
		return fmt.Sprintf("In %dw", days/7)
	case days > 0:
		return fmt.Sprintf("In %dmo", days/30)
	case days < 0 && days > -14:
		return fmt.Sprintf("%dd ago", -days)
	case days < 0 && days > -60:
		return fmt.Sprintf("%dw ago", -days/7)
	default:
		return fmt.Sprintf("%dmo ago", -days/30)
	}
}

// DueDate renders an optional due date with urgency coloring. Closed tasks
// are never urgent.
func DueDate(d *domain.Date, status domain.TaskStatus) string {
	return DueDateFrom(d, status, time.Now())
}

// DueDateFrom is DueDate against a reference time.
func DueDateFrom(d *domain.Date, status domain.TaskStatus, now time.Time) string {
	if d == nil || d.IsZero() {
		return Dim("--")
	}
	if status == domain.TaskDone || status == domain.TaskCancelled {
		return StyleDim.Render(d.String())
	}
	today := domain.NewDate(now).Time
	rel := " " + Dim("("+RelativeDateFrom(d.Time, today)+")")
	days := int(math.Round(d.Sub(today).Hours() / 24))
	switch {
	case days <= 2:
		return StyleRed.Render(d.String()) + rel
	case days <= 7:
		return StyleYellow.Render(d.String()) + rel
	}
	return d.String() + rel
}

// HumanDate returns a human-friendly absolute date string.
func HumanDate(t time.Time) string {
	now := time.Now()
	y1, m1, d1 := now.Date()
	y2, m2, d2 := t.Date()

	if y1 == y2 && m1 == m2 && d1 == d2 {
		return "Today"
	}
	yesterday := now.AddDate(0, 0, -1)
	y3, m3, d3 := yesterday.Date()
	if y2 == y3 && m2 == m3 && d2 == d3 {
		return "Yesterday"
	}
	return t.Format("Jan 2, 2006")
}

// HumanTimestamp returns a human-friendly relative timestamp string.
func HumanTimestamp(t time.Time) string {
	if t.IsZero() {
		return Dim("--")
	}
	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < 0:
		return HumanDate(t)
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return HumanDate(t)
	}
}

// TaskStatusPill returns a colored status indicator for a task.
func TaskStatusPill(status domain.TaskStatus) string {
	switch status {
	case domain.TaskOpen:
		return StyleBlue.Render("○ Open")
	case domain.TaskInProgress:
		return StyleGreen.Render("● In Progress")
	case domain.TaskDone:
		return StyleDim.Render("✔ Done")
	case domain.TaskCancelled:
		return StyleDim.Render("✖ Cancelled")
	default:
		return StyleDim.Render(string(status))
	}
}

// PriorityBadge colors a task priority by urgency.
func PriorityBadge(p domain.Priority) string {
	switch p {
	case domain.PriorityUrgent:
		return StyleRed.Render("▲ Urgent")
	case domain.PriorityHigh:
		return StyleYellow.Render("▴ High")
	case domain.PriorityMedium:
		return StyleFg.Render("• Medium")
	case domain.PriorityLow:
		return StyleDim.Render("▾ Low")
	default:
		return StyleDim.Render(string(p))
	}
}

// FlowBadge labels the flow type of a task or delivery item.
func FlowBadge(f domain.FlowType) string {
	switch f {
	case domain.FlowOperational:
		return StyleBlue.Render("OPS")
	case domain.FlowDevelopment:
		return StylePurple.Render("DEV")
	default:
		return StyleDim.Render("--")
	}
}

// DeliveryStatusPill returns a colored status indicator for a delivery.
func DeliveryStatusPill(status domain.DeliveryStatus) string {
	switch status {
	case domain.DeliveryPending:
		return StyleBlue.Render("○ Pending")
	case domain.DeliveryInProgress:
		return StyleGreen.Render("● In Progress")
	case domain.DeliveryDelivered:
		return StyleYellow.Render("➜ Delivered")
	case domain.DeliveryApproved:
		return StyleDim.Render("✔ Approved")
	case domain.DeliveryRejected:
		return StyleRed.Render("✖ Rejected")
	default:
		return StyleDim.Render(string(status))
	}
}

// ItemStatusPill returns a colored status indicator for a delivery item.
func ItemStatusPill(status domain.ItemStatus) string {
	switch status {
	case domain.ItemPending:
		return StyleBlue.Render("○ Pending")
	case domain.ItemInProgress:
		return StyleGreen.Render("● In Progress")
	case domain.ItemInReview:
		return StyleYellow.Render("◐ In Review")
	case domain.ItemDone:
		return StyleDim.Render("✔ Done")
	case domain.ItemBlocked:
		return StyleRed.Render("■ Blocked")
	default:
		return StyleDim.Render(string(status))
	}
}

// BillingStatusPill returns a colored status indicator for a billing period.
func BillingStatusPill(status domain.BillingStatus) string {
	switch status {
	case domain.BillingOpen:
		return StyleGreen.Render("● Open")
	case domain.BillingClosed:
		return StyleDim.Render("■ Closed")
	default:
		return StyleDim.Render(string(status))
	}
}

// QuoteStatusPill returns a colored status indicator for a quote.
func QuoteStatusPill(status domain.QuoteStatus) string {
	switch status {
	case domain.QuoteApproved:
		return StyleGreen.Render("✔ Approved")
	case domain.QuoteSent:
		return StyleYellow.Render("➜ Sent")
	case domain.QuoteRejected:
		return StyleRed.Render("✖ Rejected")
	case domain.QuoteDraft:
		return StyleDim.Render("○ Draft")
	default:
		return StyleDim.Render(string(status))
	}
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// FormatAmount renders a money amount with two decimals and thousands
// separators, prefixed by the currency when known.
func FormatAmount(amount float64, currency string) string {
	neg := amount < 0
	cents := int64(math.Round(math.Abs(amount) * 100))
	whole := fmt.Sprintf("%d", cents/100)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	s := fmt.Sprintf("%s.%02d", b.String(), cents%100)
	if neg {
		s = "-" + s
	}
	if currency != "" {
		s = currency + " " + s
	}
	return s
}

// Truncate shortens s to at most n visible runes, marking the cut with "…".
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// OrDash renders empty strings as a dim placeholder.
func OrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return Dim("--")
	}
	return s
}
