package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type deliveryLoadedMsg struct {
	view     *deliveryDetailView
	delivery *domain.Delivery
	items    []domain.DeliveryItem
	err      error
}

func (deliveryLoadedMsg) broadcast() {}

// deliveryDetailView shows a delivery and works on its items.
type deliveryDetailView struct {
	state    *SharedState
	id       int64
	delivery *domain.Delivery
	items    []domain.DeliveryItem
	cursor   int
	loading  bool
	err      error
}

func newDeliveryDetailView(state *SharedState, id int64) *deliveryDetailView {
	return &deliveryDetailView{state: state, id: id, loading: true}
}

func (v *deliveryDetailView) ID() ViewID { return ViewDeliveryDetail }

func (v *deliveryDetailView) Title() string {
	return fmt.Sprintf("Delivery #%d", v.id)
}

func (v *deliveryDetailView) ShortHelp() []key.Binding {
	hints := []key.Binding{
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "item status")),
		key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "notes")),
	}
	if it, ok := v.selected(); ok && it.Kind() == domain.FlowDevelopment {
		hints = append(hints,
			key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "branch")),
			key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pull request")),
		)
	}
	return append(hints,
		key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add item")),
		key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "delivery status")),
	)
}

func (v *deliveryDetailView) Init() tea.Cmd {
	return v.load()
}

func (v *deliveryDetailView) load() tea.Cmd {
	app := v.state.App
	id := v.id
	return func() tea.Msg {
		ctx, cancel := v.state.RequestContext()
		defer cancel()

		d, err := app.API.Deliveries.Get(ctx, id)
		if err != nil {
			return deliveryLoadedMsg{view: v, err: err}
		}
		items := d.Items
		if len(items) == 0 {
			if items, err = app.API.DeliveryItems.List(ctx, id); err != nil {
				return deliveryLoadedMsg{view: v, err: err}
			}
		}
		return deliveryLoadedMsg{view: v, delivery: d, items: items}
	}
}

func (v *deliveryDetailView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case deliveryLoadedMsg:
		if msg.view != v {
			return v, nil
		}
		v.loading = false
		v.err = msg.err
		if msg.err == nil {
			v.delivery, v.items = msg.delivery, msg.items
			v.cursor = min(v.cursor, max(len(v.items)-1, 0))
		}
		return v, nil

	case refreshViewMsg:
		return v, v.load()

	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *deliveryDetailView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
		return nil
	case "down", "j":
		if v.cursor < len(v.items)-1 {
			v.cursor++
		}
		return nil
	case "r":
		return v.load()
	}
	if v.delivery == nil {
		return nil
	}

	switch msg.String() {
	case "a":
		return addItemCmd(v.state, v.delivery.ID)
	case "S":
		return deliveryStatusCmd(v.state, *v.delivery)
	}

	it, ok := v.selected()
	if !ok {
		return nil
	}
	switch msg.String() {
	case "s":
		return itemStatusCmd(v.state, it)
	case "o":
		return itemTextCmd(v.state, it, "Notes", it.Notes, "max=2000", func(s string) domain.ItemPatch {
			return domain.ItemPatch{Notes: &s}
		})
	case "b", "p":
		dev, isDev := it.Detail.(domain.DevelopmentItem)
		if !isDev {
			return outputCmd(formatter.StyleYellow.Render("Branch and pull request apply to development items only."))
		}
		if msg.String() == "b" {
			return itemTextCmd(v.state, it, "Branch", dev.Branch, "omitempty,max=255,excludesall= ~^:?*[\\", func(s string) domain.ItemPatch {
				return domain.ItemPatch{Branch: &s}
			})
		}
		return itemTextCmd(v.state, it, "Pull request URL", dev.PullRequestURL, "omitempty,url", func(s string) domain.ItemPatch {
			return domain.ItemPatch{PullRequestURL: &s}
		})
	}
	return nil
}

func (v *deliveryDetailView) selected() (domain.DeliveryItem, bool) {
	if v.cursor >= len(v.items) {
		return domain.DeliveryItem{}, false
	}
	return v.items[v.cursor], true
}

func (v *deliveryDetailView) View() string {
	if v.loading && v.delivery == nil {
		return "\n  " + formatter.Dim("Loading delivery...")
	}
	if v.err != nil {
		return "\n" + indent(errorOutput(v.err), "  ")
	}

	d := v.delivery
	var b strings.Builder
	b.WriteString("\n  " + formatter.Header(fmt.Sprintf("#%d  %s", d.ID, d.Title)) + "\n")
	delivered := ""
	if d.DeliveredAt != nil {
		delivered = d.DeliveredAt.String()
	}
	b.WriteString(formatter.FormatFields([][2]string{
		{"Task", strings.TrimSpace(d.TaskCode + " " + d.TaskTitle)},
		{"Status", formatter.DeliveryStatusPill(d.Status)},
		{"Delivered", delivered},
		{"Notes", d.Notes},
	}))
	b.WriteString("\n")

	if len(v.items) == 0 {
		b.WriteString("  " + formatter.Dim("No items. Press a to add one.") + "\n")
		return b.String()
	}
	b.WriteString("  " + formatter.RenderProgress(doneItems(v.items), len(v.items), 24) + "\n\n")
	for i, it := range v.items {
		line := fmt.Sprintf("%s %s  %s  %s", formatter.Dim(fmt.Sprintf("#%d", it.ID)), formatter.FlowBadge(it.Kind()),
			it.Title, formatter.ItemStatusPill(it.Status))
		if i == v.cursor {
			b.WriteString("  " + formatter.StyleGreen.Render("▸ ") + line + "\n")
			if fields := itemFields(it); len(fields) > 0 {
				b.WriteString(indent(formatter.FormatFields(fields), "  "))
			}
			continue
		}
		b.WriteString("    " + line + "  " + formatter.Dim(itemSummary(it.Detail)) + "\n")
	}
	return b.String()
}

// ── item flows ───────────────────────────────────────────────────────────────

func itemStatusCmd(state *SharedState, it domain.DeliveryItem) tea.Cmd {
	status := it.Status
	form := wizardSelect(fmt.Sprintf("Status of item #%d", it.ID),
		statusOptions(domain.ItemStatuses, func(s domain.ItemStatus) string { return string(s) }), &status)
	return startWizardCmd(state, "Item Status", form, func() tea.Cmd {
		if status == it.Status {
			return nil
		}
		return patchItemCmd(state, it, domain.ItemPatch{Status: &status})
	})
}

// itemTextCmd edits one free-text field of an item.
func itemTextCmd(state *SharedState, it domain.DeliveryItem, label, current, rule string,
	patch func(string) domain.ItemPatch) tea.Cmd {
	value := current
	form := wizardInputText(fmt.Sprintf("%s of item #%d", label, it.ID), "", domain.Check(strings.ToLower(label), rule), &value)
	return startWizardCmd(state, label, form, func() tea.Cmd {
		value = strings.TrimSpace(value)
		if value == current {
			return nil
		}
		return patchItemCmd(state, it, patch(value))
	})
}

func patchItemCmd(state *SharedState, it domain.DeliveryItem, p domain.ItemPatch) tea.Cmd {
	return actionCmd(state, func(ctx context.Context) (string, error) {
		updated, err := state.App.API.DeliveryItems.Patch(ctx, it.ID, p)
		if err != nil {
			return "", err
		}
		return doneMark(fmt.Sprintf("Updated item #%d %s", updated.ID, formatter.ItemStatusPill(updated.Status))), nil
	})
}

// addItemCmd asks for the common fields, then the fields of the chosen kind.
func addItemCmd(state *SharedState, deliveryID int64) tea.Cmd {
	d := &itemDraft{kind: domain.FlowOperational}
	return startWizardCmd(state, "New Item", itemInfoForm(d), func() tea.Cmd {
		return pushView(newWizardView(state, "New Item", itemDetailForm(d), func() tea.Cmd {
			in := d.input()
			return actionCmd(state, func(ctx context.Context) (string, error) {
				item, err := state.App.API.DeliveryItems.Create(ctx, deliveryID, in)
				if err != nil {
					return "", err
				}
				return doneMark(fmt.Sprintf("Added item #%d %s", item.ID, formatter.Bold(item.Title))), nil
			})
		}))
	})
}

func deliveryStatusCmd(state *SharedState, d domain.Delivery) tea.Cmd {
	status := d.Status
	form := wizardSelect(fmt.Sprintf("Status of delivery #%d", d.ID),
		statusOptions(domain.DeliveryStatuses, func(s domain.DeliveryStatus) string { return string(s) }), &status)
	return startWizardCmd(state, "Delivery Status", form, func() tea.Cmd {
		if status == d.Status {
			return nil
		}
		return actionCmd(state, func(ctx context.Context) (string, error) {
			updated, err := state.App.API.Deliveries.UpdateStatus(ctx, d.ID, status)
			if err != nil {
				return "", err
			}
			return doneMark(fmt.Sprintf("Delivery #%d is now %s", updated.ID, formatter.DeliveryStatusPill(updated.Status))), nil
		})
	})
}
