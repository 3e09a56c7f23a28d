package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/alexanderramin/taskdesk/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// deliveryWizard walks through a new delivery one form at a time:
// task, header, any number of items, then a final confirmation.
type deliveryWizard struct {
	state *SharedState
	in    domain.DeliveryInput
}

// newDeliveryWizard starts the flow. A zero taskID asks for the task first.
func newDeliveryWizard(state *SharedState, taskID int64) tea.Cmd {
	w := &deliveryWizard{state: state, in: domain.DeliveryInput{TaskID: taskID}}
	if taskID != 0 {
		return w.header()
	}
	return pickerCmd(state, "Task", "No open tasks to deliver.", openTaskOptions(state.App), &w.in.TaskID, w.header)
}

func (w *deliveryWizard) header() tea.Cmd {
	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Delivery title").
				Value(&w.in.Title).
				Validate(domain.Check("title", "required,min=3,max=200")),
			huh.NewText().
				Title("Notes").
				Value(&w.in.Notes).
				Validate(domain.Check("notes", "max=2000")),
		),
	)
	return startWizardCmd(w.state, "New Delivery", form, w.askItem)
}

// askItem offers another item until the user declines.
func (w *deliveryWizard) askItem() tea.Cmd {
	more := len(w.in.Items) == 0
	question := "Add an item?"
	if len(w.in.Items) > 0 {
		question = fmt.Sprintf("Add another item? (%s so far)", itemCountLabel(len(w.in.Items)))
	}
	return startWizardCmd(w.state, "New Delivery", wizardConfirm(question, "", &more), func() tea.Cmd {
		if more {
			return w.item()
		}
		return w.confirm()
	})
}

func (w *deliveryWizard) item() tea.Cmd {
	d := &itemDraft{kind: domain.FlowOperational}
	return startWizardCmd(w.state, fmt.Sprintf("Item %d", len(w.in.Items)+1), itemInfoForm(d), func() tea.Cmd {
		return pushView(newWizardView(w.state, fmt.Sprintf("Item %d", len(w.in.Items)+1), itemDetailForm(d), func() tea.Cmd {
			w.in.Items = append(w.in.Items, d.input())
			return w.askItem()
		}))
	})
}

func (w *deliveryWizard) confirm() tea.Cmd {
	ok := true
	form := wizardConfirm("Create this delivery?", w.summary(), &ok)
	return startWizardCmd(w.state, "New Delivery", form, func() tea.Cmd {
		if !ok {
			return outputCmd(formatter.Dim("Cancelled."))
		}
		return w.submit()
	})
}

func (w *deliveryWizard) summary() string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(w.in.Title))
	for _, it := range w.in.Items {
		b.WriteString(fmt.Sprintf("\n  %s %s", it.Detail.Kind(), it.Title))
	}
	if len(w.in.Items) == 0 {
		b.WriteString("\n  no items")
	}
	return b.String()
}

func (w *deliveryWizard) submit() tea.Cmd {
	in := w.in
	in.Title = strings.TrimSpace(in.Title)
	in.Notes = strings.TrimSpace(in.Notes)
	if err := domain.Validate(in); err != nil {
		return outputCmd(errorOutput(err))
	}
	deliveries := w.state.App.API.Deliveries
	return actionCmd(w.state, func(ctx context.Context) (string, error) {
		d, err := deliveries.Create(ctx, in)
		if err != nil {
			return "", err
		}
		return doneMark(fmt.Sprintf("Created delivery #%d with %s", d.ID, itemCountLabel(len(in.Items)))), nil
	})
}
