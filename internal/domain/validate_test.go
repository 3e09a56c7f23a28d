package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTaskInput() TaskInput {
	return TaskInput{
		Title:       "Deploy reporting",
		Priority:    PriorityHigh,
		FlowType:    FlowDevelopment,
		RequesterID: 1,
		ProjectID:   2,
	}
}

func TestValidate_TaskInput(t *testing.T) {
	require.NoError(t, Validate(validTaskInput()))

	in := validTaskInput()
	in.Title = "ab"
	in.Link = "not a url"
	err := Validate(in)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 2)
	assert.Equal(t, "title", verr.Fields[0].Field)
	assert.Equal(t, "must be at least 3 characters", verr.Fields[0].Message)
	assert.Equal(t, "link", verr.Fields[1].Field)
	assert.Contains(t, err.Error(), "link must be a valid URL")
}

func TestValidate_TaskInputBadPriority(t *testing.T) {
	in := validTaskInput()
	in.Priority = "SOMEDAY"
	err := Validate(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "priority must be one of LOW, MEDIUM, HIGH, URGENT")
}

func TestValidate_BillingMonthRange(t *testing.T) {
	require.NoError(t, Validate(BillingPeriodInput{ProjectID: 1, Year: 2025, Month: 12}))

	err := Validate(BillingPeriodInput{ProjectID: 1, Year: 2025, Month: 13})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "month must be 12 or less")
}

func TestValidate_DeliveryInputChecksItemDetail(t *testing.T) {
	in := DeliveryInput{
		TaskID: 5,
		Title:  "Sprint 4",
		Items: []DeliveryItemInput{
			{Title: "API", Detail: DevelopmentItem{Repository: "api", PullRequestURL: "https://x.example/pr/1"}},
			{Title: "Docs", Detail: DevelopmentItem{}},
		},
	}
	err := Validate(in)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "item 2")
	assert.Contains(t, err.Error(), "Repository is required")

	in.Items[1].Detail = DevelopmentItem{Repository: "docs"}
	assert.NoError(t, Validate(in))
}

func TestValidate_DeliveryItemMissingDetail(t *testing.T) {
	err := Validate(DeliveryItemInput{Title: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "detail is required")
}

func TestValidate_BranchCharacters(t *testing.T) {
	err := Validate(DeliveryItemInput{Title: "x", Detail: DevelopmentItem{Repository: "r", Branch: "bad branch"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed")
}

func TestValidate_AttachmentUpload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o600))

	assert.NoError(t, Validate(AttachmentUpload{TaskID: 1, Path: path}))
	assert.Error(t, Validate(AttachmentUpload{TaskID: 1, Path: path + ".missing"}))
}

func TestCheck(t *testing.T) {
	check := Check("title", "required,min=3")
	assert.NoError(t, check("hello"))
	assert.EqualError(t, check("  "), "title is required")
	assert.EqualError(t, check("ab"), "title must be at least 3 characters")
}
