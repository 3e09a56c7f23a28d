package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

func newDeliveriesView(state *SharedState) *tableView[domain.DeliveryGroup] {
	return newTableView(state, tableSpec[domain.DeliveryGroup]{
		id:      ViewDeliveryList,
		title:   "Deliveries",
		prefKey: "deliveries",
		noun:    "tasks",
		columns: deliveryGroupColumns(),
		fetch:   state.App.API.Deliveries.ListGrouped,
		open: func(g domain.DeliveryGroup) tea.Cmd {
			return openDeliveryCmd(state, g)
		},
		detail: deliveryGroupPreview,
		actions: []tableAction[domain.DeliveryGroup]{
			{
				binding: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new delivery")),
				run: func(g *domain.DeliveryGroup) tea.Cmd {
					if g == nil {
						return newDeliveryWizard(state, 0)
					}
					return newDeliveryWizard(state, g.Task.ID)
				},
			},
			{
				binding: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open task")),
				run: func(g *domain.DeliveryGroup) tea.Cmd {
					if g == nil {
						return nil
					}
					return pushView(newTaskDetailView(state, g.Task.ID))
				},
			},
		},
	})
}

// openDeliveryCmd opens the only delivery of a group directly and asks which
// one otherwise.
func openDeliveryCmd(state *SharedState, g domain.DeliveryGroup) tea.Cmd {
	switch len(g.Deliveries) {
	case 0:
		return outputCmd(formatter.Dim(g.Task.Code + " has no deliveries listed."))
	case 1:
		return pushView(newDeliveryDetailView(state, g.Deliveries[0].ID))
	}
	opts := make([]huh.Option[int64], len(g.Deliveries))
	for i, d := range g.Deliveries {
		opts[i] = huh.NewOption(fmt.Sprintf("#%d %s  %s", d.ID, d.Title, d.Status), d.ID)
	}
	var id int64
	return startWizardCmd(state, g.Task.Code, wizardSelect("Delivery", opts, &id), func() tea.Cmd {
		return pushView(newDeliveryDetailView(state, id))
	})
}

// deliveryGroupPreview lists every delivery of the focused task.
func deliveryGroupPreview(g domain.DeliveryGroup) string {
	var b strings.Builder
	b.WriteString(formatter.Bold(g.Task.Code+"  "+g.Task.Title) + "  " + formatter.Dim(deliveryCountLabel(g.TotalDeliveries)) + "\n")
	for _, d := range g.Deliveries {
		b.WriteString(fmt.Sprintf("  #%d %s  %s  %s\n", d.ID, formatter.Truncate(d.Title, 50),
			formatter.DeliveryStatusPill(d.Status), formatter.Dim(itemCountLabel(d.ItemCount))))
	}
	if g.Mismatch() {
		b.WriteString(mismatchWarning(g))
	}
	return strings.TrimRight(b.String(), "\n")
}
