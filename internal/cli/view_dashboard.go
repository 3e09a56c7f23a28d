package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/taskdesk/internal/api"
	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/table"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ── data types ───────────────────────────────────────────────────────────────

// dashboardEntry is one destination in the home menu.
type dashboardEntry struct {
	label string
	hint  string
	open  func(*SharedState) View
}

func dashboardEntries() []dashboardEntry {
	return []dashboardEntry{
		{"Tasks", "operational and development work", func(s *SharedState) View { return newTasksView(s) }},
		{"Deliveries", "handovers grouped by task", func(s *SharedState) View { return newDeliveriesView(s) }},
		{"Billing", "monthly billing periods", func(s *SharedState) View { return newBillingView(s) }},
		{"Projects", "reference", func(s *SharedState) View { return newProjectsView(s) }},
		{"Quotes", "reference", func(s *SharedState) View { return newQuotesView(s) }},
		{"Requesters", "reference", func(s *SharedState) View { return newRequestersView(s) }},
	}
}

// dashboardStats are the counters in the right pane.
type dashboardStats struct {
	profile        *domain.UserProfile
	openTasks      int
	activeTasks    int
	openPeriods    int
	withDeliveries int
}

// ── messages ─────────────────────────────────────────────────────────────────

type dashboardLoadedMsg struct {
	view  *dashboardView
	stats dashboardStats
	err   error
}

func (dashboardLoadedMsg) broadcast() {}

// ── view ─────────────────────────────────────────────────────────────────────

// dashboardView is the home screen: a menu on the left and the signed-in
// user's workload on the right.
type dashboardView struct {
	state   *SharedState
	entries []dashboardEntry
	cursor  int
	stats   *dashboardStats
	loading bool
	err     error
}

func newDashboardView(state *SharedState) *dashboardView {
	return &dashboardView{
		state:   state,
		entries: dashboardEntries(),
		loading: true,
	}
}

func (v *dashboardView) ID() ViewID    { return ViewDashboard }
func (v *dashboardView) Title() string { return "Home" }

func (v *dashboardView) ShortHelp() []key.Binding {
	hints := []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		key.NewBinding(key.WithKeys("1"), key.WithHelp("1-6", "jump")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
	if v.state.User == "" {
		hints = append(hints, key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "sign in")))
	}
	return append(hints, key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")))
}

func (v *dashboardView) Init() tea.Cmd {
	return v.load()
}

// ── data loading ─────────────────────────────────────────────────────────────

func (v *dashboardView) load() tea.Cmd {
	v.loading = true
	app := v.state.App
	return func() tea.Msg {
		ctx, cancel := v.state.RequestContext()
		defer cancel()

		profile, err := app.Profile.Get(ctx)
		if err != nil {
			return dashboardLoadedMsg{view: v, err: err}
		}
		stats := dashboardStats{profile: profile}
		counts := []struct {
			dst   *int
			count func(context.Context) (int, error)
		}{
			{&stats.openTasks, countOf(app.API.Tasks.List, table.Filters{"status": string(domain.TaskOpen)})},
			{&stats.activeTasks, countOf(app.API.Tasks.List, table.Filters{"status": string(domain.TaskInProgress)})},
			{&stats.openPeriods, countOf(app.API.Billing.List, table.Filters{"status": string(domain.BillingOpen)})},
			{&stats.withDeliveries, countOf(app.API.Deliveries.ListGrouped, nil)},
		}
		for _, c := range counts {
			n, err := c.count(ctx)
			if err != nil {
				return dashboardLoadedMsg{view: v, err: err}
			}
			*c.dst = n
		}
		return dashboardLoadedMsg{view: v, stats: stats}
	}
}

// countOf asks for a one-record page and reads the total from its envelope.
func countOf[T any](list func(context.Context, table.Query) (*domain.Page[T], error), filters table.Filters) func(context.Context) (int, error) {
	return func(ctx context.Context) (int, error) {
		q := table.NewQuery(1)
		q.Filters = filters
		page, err := list(ctx, q)
		if err != nil {
			return 0, err
		}
		return page.TotalElements, nil
	}
}

// ── update ───────────────────────────────────────────────────────────────────

func (v *dashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		if msg.view != v {
			return v, nil
		}
		v.loading = false
		v.err = msg.err
		if msg.err != nil {
			v.stats = nil
			if errors.Is(msg.err, api.ErrUnauthorized) {
				v.state.User = ""
			}
			return v, nil
		}
		v.stats = &msg.stats
		v.state.User = msg.stats.profile.Username
		return v, nil

	case refreshViewMsg, sessionChangedMsg:
		return v, v.load()

	case tea.KeyMsg:
		switch k := msg.String(); k {
		case "up", "k":
			if v.cursor > 0 {
				v.cursor--
			}
		case "down", "j":
			if v.cursor < len(v.entries)-1 {
				v.cursor++
			}
		case "enter":
			return v, pushView(v.entries[v.cursor].open(v.state))
		case "r":
			return v, v.load()
		case "l":
			if v.state.User == "" {
				return v, loginCmd(v.state)
			}
		default:
			if len(k) == 1 && k[0] >= '1' && int(k[0]-'1') < len(v.entries) {
				v.cursor = int(k[0] - '1')
				return v, pushView(v.entries[v.cursor].open(v.state))
			}
		}
	}
	return v, nil
}

// ── rendering ────────────────────────────────────────────────────────────────

func (v *dashboardView) View() string {
	left := v.renderMenu()
	right := v.renderStats()
	if v.state.Width >= 80 {
		return "\n" + lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(40).Render(left), "  ", right)
	}
	return "\n" + left + "\n" + right
}

func (v *dashboardView) renderMenu() string {
	var b strings.Builder
	b.WriteString(formatter.FormatWelcome(v.state.User) + "\n")
	for i, e := range v.entries {
		cursor := "  "
		label := e.label
		if i == v.cursor {
			cursor = formatter.StyleGreen.Render("▸ ")
			label = formatter.Bold(label)
		}
		b.WriteString(fmt.Sprintf("  %s%s %s  %s\n", cursor, formatter.Dim(fmt.Sprintf("%d", i+1)), label, formatter.Dim(e.hint)))
	}
	return b.String()
}

func (v *dashboardView) renderStats() string {
	switch {
	case v.loading && v.stats == nil:
		return "  " + formatter.Dim("Loading...")
	case v.err != nil:
		if errors.Is(v.err, api.ErrUnauthorized) {
			return ""
		}
		return indent(errorOutput(v.err), "  ")
	case v.stats == nil:
		return ""
	}
	s := v.stats
	var b strings.Builder
	b.WriteString("  " + formatter.StyleHeader.Render(s.profile.DisplayName()) + "\n")
	if len(s.profile.Roles) > 0 {
		b.WriteString("  " + formatter.Dim(strings.Join(s.profile.Roles, ", ")) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(formatter.FormatFields([][2]string{
		{"Open tasks", fmt.Sprintf("%d", s.openTasks)},
		{"In progress", fmt.Sprintf("%d", s.activeTasks)},
		{"Tasks with deliveries", fmt.Sprintf("%d", s.withDeliveries)},
		{"Open billing periods", fmt.Sprintf("%d", s.openPeriods)},
	}))
	return b.String()
}
