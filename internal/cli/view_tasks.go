package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

func newTasksView(state *SharedState) *tableView[domain.Task] {
	app := state.App
	return newTableView(state, tableSpec[domain.Task]{
		id:      ViewTaskList,
		title:   "Tasks",
		prefKey: "tasks",
		noun:    "tasks",
		columns: taskColumns(),
		fetch:   app.API.Tasks.List,
		open: func(t domain.Task) tea.Cmd {
			return pushView(newTaskDetailView(state, t.ID))
		},
		detail: taskPreview,
		actions: []tableAction[domain.Task]{
			{
				binding: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
				run:     func(*domain.Task) tea.Cmd { return taskFormCmd(state, nil) },
			},
			{
				binding: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
				run: func(t *domain.Task) tea.Cmd {
					if t == nil {
						return nil
					}
					return taskFormCmd(state, t)
				},
			},
			{
				binding: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "status")),
				run: func(t *domain.Task) tea.Cmd {
					if t == nil {
						return nil
					}
					return taskStatusCmd(state, *t)
				},
			},
			{
				binding: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
				run: func(t *domain.Task) tea.Cmd {
					if t == nil {
						return nil
					}
					return deleteTaskCmd(state, *t)
				},
			},
		},
	})
}

// taskPreview is the pane under the task table.
func taskPreview(t domain.Task) string {
	var b strings.Builder
	b.WriteString(formatter.Bold(t.DisplayID()+"  "+t.Title) + "\n")
	meta := []string{formatter.FlowBadge(t.FlowType), formatter.PriorityBadge(t.Priority)}
	if t.DueDate != nil {
		meta = append(meta, "due "+formatter.DueDate(t.DueDate, t.Status))
	}
	b.WriteString(strings.Join(meta, "  "))
	if t.Description != "" {
		b.WriteString("\n" + formatter.Dim(formatter.Truncate(strings.ReplaceAll(t.Description, "\n", " "), 120)))
	}
	return b.String()
}

// taskFormCmd loads the reference lists, then pushes the task form. A nil
// existing task creates a new one.
func taskFormCmd(state *SharedState, existing *domain.Task) tea.Cmd {
	app := state.App
	return func() tea.Msg {
		ctx, cancel := state.RequestContext()
		defer cancel()

		var opts taskOptions
		var err error
		if opts.projects, err = projectOptions(app)(ctx); err != nil {
			return cmdOutputMsg{output: errorOutput(err)}
		}
		if opts.requesters, err = requesterOptions(app)(ctx); err != nil {
			return cmdOutputMsg{output: errorOutput(err)}
		}
		if opts.quotes, err = quoteOptions(app)(ctx); err != nil {
			return cmdOutputMsg{output: errorOutput(err)}
		}

		title := "New Task"
		var in domain.TaskInput
		if existing != nil {
			title = "Edit " + existing.DisplayID()
			in = domain.InputFromTask(existing)
			// Inactive references stay selectable on the task that uses them.
			opts.projects = ensureOption(opts.projects, existing.ProjectID, existing.ProjectName)
			opts.requesters = ensureOption(opts.requesters, existing.RequesterID, existing.RequesterName)
		}
		if len(opts.projects) == 0 || len(opts.requesters) == 0 {
			return cmdOutputMsg{output: formatter.StyleYellow.Render("Tasks need an active project and requester.")}
		}

		d := newTaskDraft(in)
		form := taskForm(d, opts, existing != nil)
		return pushViewMsg{view: newWizardView(state, title, form, func() tea.Cmd {
			return saveTaskCmd(state, existing, d)
		})}
	}
}

func ensureOption(opts []huh.Option[int64], id int64, label string) []huh.Option[int64] {
	if id == 0 {
		return opts
	}
	for _, o := range opts {
		if o.Value == id {
			return opts
		}
	}
	return append(opts, huh.NewOption(domain.Coalesce(label, fmt.Sprintf("#%d", id)), id))
}

func saveTaskCmd(state *SharedState, existing *domain.Task, d *taskDraft) tea.Cmd {
	in, err := d.input()
	if err != nil {
		return outputCmd(errorOutput(err))
	}
	tasks := state.App.API.Tasks
	return actionCmd(state, func(ctx context.Context) (string, error) {
		if existing == nil {
			t, err := tasks.Create(ctx, in)
			if err != nil {
				return "", err
			}
			return doneMark("Created task " + formatter.Bold(t.DisplayID())), nil
		}
		t, err := tasks.Update(ctx, existing.ID, in)
		if err != nil {
			return "", err
		}
		return doneMark("Updated task " + formatter.Bold(t.DisplayID())), nil
	})
}

func taskStatusCmd(state *SharedState, t domain.Task) tea.Cmd {
	status := t.Status
	form := wizardSelect("Status of "+t.DisplayID(),
		statusOptions(domain.TaskStatuses, func(s domain.TaskStatus) string { return string(s) }), &status)
	return startWizardCmd(state, "Task Status", form, func() tea.Cmd {
		if status == t.Status {
			return nil
		}
		return actionCmd(state, func(ctx context.Context) (string, error) {
			updated, err := state.App.API.Tasks.ChangeStatus(ctx, t.ID, status)
			if err != nil {
				return "", err
			}
			return doneMark(updated.DisplayID() + " is now " + formatter.TaskStatusPill(updated.Status)), nil
		})
	})
}

func deleteTaskCmd(state *SharedState, t domain.Task) tea.Cmd {
	return confirmCmd(state, "Delete Task", fmt.Sprintf("Delete %s %q?", t.DisplayID(), t.Title),
		func(ctx context.Context) (string, error) {
			if err := state.App.API.Tasks.Delete(ctx, t.ID); err != nil {
				return "", err
			}
			return doneMark("Deleted " + formatter.Bold(t.DisplayID())), nil
		})
}
