package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/table"
)

type TaskService struct {
	c *Client
}

func (s *TaskService) List(ctx context.Context, q table.Query) (*domain.Page[domain.Task], error) {
	return List[domain.Task](ctx, s.c, "tasks", q)
}

func (s *TaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	var t domain.Task
	if err := s.c.get(ctx, idPath("/tasks/%d", id), nil, &t); err != nil {
		return nil, fmt.Errorf("getting task %d: %w", id, err)
	}
	return &t, nil
}

func (s *TaskService) Create(ctx context.Context, in domain.TaskInput) (*domain.Task, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	var t domain.Task
	if err := s.c.send(ctx, http.MethodPost, "/tasks", in, &t); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return &t, nil
}

func (s *TaskService) Update(ctx context.Context, id int64, in domain.TaskInput) (*domain.Task, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	var t domain.Task
	if err := s.c.send(ctx, http.MethodPut, idPath("/tasks/%d", id), in, &t); err != nil {
		return nil, fmt.Errorf("updating task %d: %w", id, err)
	}
	return &t, nil
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	if err := s.c.send(ctx, http.MethodDelete, idPath("/tasks/%d", id), nil, nil); err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	return nil
}

// ChangeStatus moves a task through its workflow. The backend decides which
// transitions are legal and answers ErrConflict otherwise.
func (s *TaskService) ChangeStatus(ctx context.Context, id int64, status domain.TaskStatus) (*domain.Task, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown task status %q", domain.ErrInvalid, status)
	}
	var t domain.Task
	body := map[string]domain.TaskStatus{"status": status}
	if err := s.c.send(ctx, http.MethodPatch, idPath("/tasks/%d/status", id), body, &t); err != nil {
		return nil, fmt.Errorf("changing status of task %d: %w", id, err)
	}
	return &t, nil
}
