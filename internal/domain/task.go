package domain

import "time"

// Task is a unit of requested work. Deliveries and attachments hang off it.
type Task struct {
	ID              int64      `json:"id"`
	Code            string     `json:"code"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Status          TaskStatus `json:"status"`
	Priority        Priority   `json:"priority"`
	FlowType        FlowType   `json:"flowType"`
	RequesterID     int64      `json:"requesterId"`
	RequesterName   string     `json:"requesterName"`
	ProjectID       int64      `json:"projectId"`
	ProjectName     string     `json:"projectName"`
	QuoteID         *int64     `json:"quoteId,omitempty"`
	Link            string     `json:"link,omitempty"`
	DueDate         *Date      `json:"dueDate,omitempty"`
	AttachmentCount int        `json:"attachmentCount"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// DisplayID returns the task code, falling back to the numeric ID.
func (t *Task) DisplayID() string {
	if t.Code != "" {
		return t.Code
	}
	return formatID(t.ID)
}

// TaskInput is the create/update payload for a task.
type TaskInput struct {
	Title       string   `json:"title" validate:"required,min=3,max=200"`
	Description string   `json:"description" validate:"max=4000"`
	Priority    Priority `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH URGENT"`
	FlowType    FlowType `json:"flowType" validate:"required,oneof=OPERATIONAL DEVELOPMENT"`
	RequesterID int64    `json:"requesterId" validate:"required,gt=0"`
	ProjectID   int64    `json:"projectId" validate:"required,gt=0"`
	QuoteID     *int64   `json:"quoteId,omitempty" validate:"omitempty,gt=0"`
	Link        string   `json:"link,omitempty" validate:"omitempty,url,max=500"`
	DueDate     *Date    `json:"dueDate,omitempty"`
}

// InputFromTask seeds an edit form from an existing task.
func InputFromTask(t *Task) TaskInput {
	return TaskInput{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		FlowType:    t.FlowType,
		RequesterID: t.RequesterID,
		ProjectID:   t.ProjectID,
		QuoteID:     t.QuoteID,
		Link:        t.Link,
		DueDate:     t.DueDate,
	}
}

// Attachment is a file stored by the backend for a task.
type Attachment struct {
	ID          int64     `json:"id"`
	TaskID      int64     `json:"taskId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedBy  string    `json:"uploadedBy"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// MaxAttachmentBytes is the largest file the backend accepts.
const MaxAttachmentBytes = 20 << 20

// AttachmentUpload describes a local file to upload.
type AttachmentUpload struct {
	TaskID int64  `validate:"required,gt=0"`
	Path   string `validate:"required,file"`
}
