package formatter

import (
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRelativeDateFrom(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input time.Time
		want  string
	}{
		{"today", now, "Today"},
		{"tomorrow", now.Add(24 * time.Hour), "Tomorrow"},
		{"yesterday", now.Add(-24 * time.Hour), "Yesterday"},
		{"3 days future", now.Add(3 * 24 * time.Hour), "In 3d"},
		{"3 days past", now.Add(-3 * 24 * time.Hour), "3d ago"},
		{"3 weeks future", now.Add(21 * 24 * time.Hour), "In 3w"},
		{"3 months future", now.Add(90 * 24 * time.Hour), "In 3mo"},
		{"2 weeks past", now.Add(-14 * 24 * time.Hour), "2w ago"},
		{"3 months past", now.Add(-90 * 24 * time.Hour), "3mo ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeDateFrom(tt.input, now))
		})
	}
}

func TestDueDateFrom(t *testing.T) {
	now := time.Date(2026, 2, 7, 15, 0, 0, 0, time.UTC)
	soon := domain.NewDate(now.AddDate(0, 0, 1))
	later := domain.NewDate(now.AddDate(0, 1, 0))

	assert.Contains(t, stripStyles(DueDateFrom(nil, domain.TaskOpen, now)), "--")
	assert.Equal(t, "2026-02-08 (Tomorrow)", stripStyles(DueDateFrom(&soon, domain.TaskOpen, now)))
	assert.Equal(t, "2026-02-08", stripStyles(DueDateFrom(&soon, domain.TaskDone, now)),
		"finished tasks drop the relative hint")
	assert.Contains(t, stripStyles(DueDateFrom(&later, domain.TaskInProgress, now)), "In 4w")
}

func TestHumanTimestamp(t *testing.T) {
	now := time.Now()

	assert.Equal(t, "Just now", HumanTimestamp(now))
	assert.Equal(t, "5m ago", HumanTimestamp(now.Add(-5*time.Minute)))
	assert.Equal(t, "2h ago", HumanTimestamp(now.Add(-2*time.Hour)))
	assert.Equal(t, "Sep 30, 2022", HumanTimestamp(time.Date(2022, 9, 30, 0, 0, 0, 0, time.UTC)))
	assert.Contains(t, HumanTimestamp(time.Time{}), "--")
}

func TestStatusPills(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		contains string
	}{
		{"task open", TaskStatusPill(domain.TaskOpen), "Open"},
		{"task in progress", TaskStatusPill(domain.TaskInProgress), "In Progress"},
		{"task done", TaskStatusPill(domain.TaskDone), "Done"},
		{"task cancelled", TaskStatusPill(domain.TaskCancelled), "Cancelled"},
		{"delivery delivered", DeliveryStatusPill(domain.DeliveryDelivered), "Delivered"},
		{"delivery rejected", DeliveryStatusPill(domain.DeliveryRejected), "Rejected"},
		{"item review", ItemStatusPill(domain.ItemInReview), "In Review"},
		{"item blocked", ItemStatusPill(domain.ItemBlocked), "Blocked"},
		{"billing open", BillingStatusPill(domain.BillingOpen), "Open"},
		{"billing closed", BillingStatusPill(domain.BillingClosed), "Closed"},
		{"quote sent", QuoteStatusPill(domain.QuoteSent), "Sent"},
		{"unknown passes through", TaskStatusPill("ARCHIVED"), "ARCHIVED"},
		{"urgent", PriorityBadge(domain.PriorityUrgent), "Urgent"},
		{"dev flow", FlowBadge(domain.FlowDevelopment), "DEV"},
		{"ops flow", FlowBadge(domain.FlowOperational), "OPS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.got, tt.contains)
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{20 << 20, "20.0 MiB"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.in))
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "BRL 4,000.00", FormatAmount(4000, "BRL"))
	assert.Equal(t, "1,234,567.89", FormatAmount(1234567.891, ""))
	assert.Equal(t, "0.50", FormatAmount(0.5, ""))
	assert.Equal(t, "-12.30", FormatAmount(-12.3, ""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "ção…", Truncate("çãoção", 4))
	assert.Equal(t, "anything", Truncate("anything", 0))
}

func TestRenderBox(t *testing.T) {
	result := RenderBox("TEST", "content here")
	assert.Contains(t, result, "TEST")
	assert.Contains(t, result, "content here")
	assert.Contains(t, result, "╭")
	assert.Contains(t, result, "╰")
}

func TestError(t *testing.T) {
	assert.Equal(t, "Error: boom", stripStyles(Error(errors.New("boom"))))
}

func TestFormatFields(t *testing.T) {
	got := stripStyles(FormatFields([][2]string{{"Title", "Fix login"}, {"Link", ""}}))
	assert.Contains(t, got, "Title  Fix login")
	assert.Contains(t, got, "Link   --")
}
