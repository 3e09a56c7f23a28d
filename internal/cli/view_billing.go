package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func newBillingView(state *SharedState) *tableView[domain.BillingPeriod] {
	return newTableView(state, tableSpec[domain.BillingPeriod]{
		id:      ViewBillingList,
		title:   "Billing",
		prefKey: "billing",
		noun:    "billing periods",
		columns: billingColumns(),
		fetch:   state.App.API.Billing.List,
		detail:  billingPreview,
		actions: []tableAction[domain.BillingPeriod]{
			{
				binding: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new period")),
				run:     func(*domain.BillingPeriod) tea.Cmd { return newPeriodCmd(state) },
			},
			{
				binding: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "close")),
				run: func(b *domain.BillingPeriod) tea.Cmd {
					if b == nil {
						return nil
					}
					if b.Closed() {
						return outputCmd(formatter.Dim(b.Label() + " is already closed."))
					}
					return billingTransitionCmd(state, *b, "Close", state.App.API.Billing.Close)
				},
			},
			{
				binding: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "reopen")),
				run: func(b *domain.BillingPeriod) tea.Cmd {
					if b == nil {
						return nil
					}
					if !b.Closed() {
						return outputCmd(formatter.Dim(b.Label() + " is open."))
					}
					return billingTransitionCmd(state, *b, "Reopen", state.App.API.Billing.Reopen)
				},
			},
			{
				binding: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "report")),
				run: func(b *domain.BillingPeriod) tea.Cmd {
					if b == nil {
						return nil
					}
					return reportCmd(state, *b)
				},
			},
		},
	})
}

func billingPreview(b domain.BillingPeriod) string {
	line := formatter.Bold(b.Label()+"  "+b.ProjectName) + "  " + formatter.BillingStatusPill(b.Status)
	if b.ClosedAt != nil {
		line += "\n" + formatter.Dim(fmt.Sprintf("closed by %s %s", domain.Coalesce(b.ClosedBy, "?"), formatter.HumanTimestamp(*b.ClosedAt)))
	}
	return line
}

// newPeriodCmd picks a project, then asks for the month.
func newPeriodCmd(state *SharedState) tea.Cmd {
	var projectID int64
	period := time.Now().Format("2006-01")
	return pickerCmd(state, "Project", "No active projects.", projectOptions(state.App), &projectID, func() tea.Cmd {
		form := wizardInputText("Period (YYYY-MM)", period, validatePeriod, &period)
		return pushView(newWizardView(state, "New Billing Period", form, func() tea.Cmd {
			year, month, err := parsePeriod(period)
			if err != nil {
				return outputCmd(errorOutput(err))
			}
			in := domain.BillingPeriodInput{ProjectID: projectID, Year: year, Month: month}
			return actionCmd(state, func(ctx context.Context) (string, error) {
				b, err := state.App.API.Billing.Create(ctx, in)
				if err != nil {
					return "", err
				}
				return doneMark(fmt.Sprintf("Opened %s for %s", formatter.Bold(b.Label()), b.ProjectName)), nil
			})
		}))
	})
}

func billingTransitionCmd(state *SharedState, b domain.BillingPeriod, verb string,
	transition func(context.Context, int64) (*domain.BillingPeriod, error)) tea.Cmd {
	question := fmt.Sprintf("%s %s for %s?", verb, b.Label(), b.ProjectName)
	return confirmCmd(state, verb+" Period", question, func(ctx context.Context) (string, error) {
		updated, err := transition(ctx, b.ID)
		if err != nil {
			return "", err
		}
		return doneMark(fmt.Sprintf("%s is now %s", updated.Label(), formatter.BillingStatusPill(updated.Status))), nil
	})
}

func reportCmd(state *SharedState, b domain.BillingPeriod) tea.Cmd {
	dir := "."
	form := wizardInputText("Save "+b.ReportFileName()+" to directory", ".", nil, &dir)
	return startWizardCmd(state, "Billing Report", form, func() tea.Cmd {
		target := expandHome(domain.Coalesce(strings.TrimSpace(dir), "."))
		return tea.Batch(
			loadingCmd("Downloading report..."),
			actionCmd(state, func(ctx context.Context) (string, error) {
				path, err := state.App.API.Billing.ReportTo(ctx, b, target)
				if err != nil {
					return "", err
				}
				return doneMark("Saved " + path), nil
			}),
		)
	})
}
