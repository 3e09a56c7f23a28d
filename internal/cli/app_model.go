package cli

import (
	"strings"

	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// appModel is the root bubbletea Model for the TUI: a stack of views under a
// breadcrumb header, with the command bar and key hints at the bottom.
type appModel struct {
	state     *SharedState
	viewStack []View
	cmdBar    commandBar
	output    outputPane
	quitting  bool
}

func newAppModel(app *App) appModel {
	state := &SharedState{App: app}
	return appModel{
		state:     state,
		cmdBar:    newCommandBar(state),
		output:    newOutputPane(),
		viewStack: []View{newDashboardView(state)},
	}
}

// activeView returns the top view on the stack, or nil.
func (m *appModel) activeView() View {
	if len(m.viewStack) == 0 {
		return nil
	}
	return m.viewStack[len(m.viewStack)-1]
}

// forward hands msg to the top view only.
func (m *appModel) forward(msg tea.Msg) tea.Cmd {
	v := m.activeView()
	if v == nil {
		return nil
	}
	updated, cmd := v.Update(msg)
	m.viewStack[len(m.viewStack)-1] = updated.(View)
	return cmd
}

// broadcast delivers msg to every view on the stack. Views ignore results
// addressed to other views, so views under the top one reload after
// mutations made above them.
func (m *appModel) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i, v := range m.viewStack {
		updated, cmd := v.Update(msg)
		m.viewStack[i] = updated.(View)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// ── bubbletea interface ──────────────────────────────────────────────────────

func (m appModel) Init() tea.Cmd {
	if v := m.activeView(); v != nil {
		return v.Init()
	}
	return nil
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.state.Width, m.state.Height = msg.Width, msg.Height
		m.cmdBar.SetWidth(msg.Width)
		if m.output.active {
			m.output.resize(msg.Width, m.state.ContentHeight())
		}
		return m, m.forward(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.output.active {
			return m, m.output.update(msg)
		}

	case pushViewMsg:
		m.cmdBar.Blur()
		m.output.clear()
		m.viewStack = append(m.viewStack, msg.view)
		return m, msg.view.Init()

	case popViewMsg:
		m.pop()
		return m, nil

	case replaceViewMsg:
		m.cmdBar.Blur()
		m.output.clear()
		if len(m.viewStack) == 0 {
			m.viewStack = append(m.viewStack, msg.view)
		} else {
			m.viewStack[len(m.viewStack)-1] = msg.view
		}
		return m, msg.view.Init()

	case sessionChangedMsg:
		m.state.User = msg.user
		cmd := m.broadcast(msg)
		if msg.output != "" {
			m.show(msg.output)
		}
		return m, cmd

	case refreshViewMsg, spinner.TickMsg, broadcastMsg:
		return m, m.broadcast(msg)

	case actionDoneMsg:
		m.show(msg.output)
		return m, refreshViews()

	case cmdOutputMsg:
		m.show(msg.output)
		return m, nil

	case cmdLoadingMsg:
		m.show("\n  " + formatter.Dim(msg.message))
		return m, nil

	case wizardCompleteMsg:
		m.removeView(msg.view)
		m.output.clear()
		return m, tea.Batch(msg.nextCmd, refreshViews())

	case quitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	// Cursor blink and friends go to the command bar while it has focus.
	if m.cmdBar.Focused() {
		return m, m.cmdBar.UpdateNonKey(msg)
	}
	return m, m.forward(msg)
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	if m.cmdBar.Focused() {
		if msg.Type == tea.KeyEnter {
			m.output.clear()
		}
		return m, m.cmdBar.Update(msg)
	}

	if m.output.active {
		if isOutputScrollKey(msg) {
			return m, m.output.update(msg)
		}
		m.output.clear()
	}

	// Views with their own text input receive every key, including q and :.
	if viewCapturesInput(m.activeView()) {
		return m, m.forward(msg)
	}

	switch {
	case msg.String() == ":":
		m.cmdBar.Focus()
		return m, nil
	case msg.String() == "q":
		m.quitting = true
		return m, tea.Quit
	case msg.Type == tea.KeyEsc:
		m.pop()
		return m, nil
	}
	return m, m.forward(msg)
}

func (m appModel) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{m.renderHeader()}
	if m.output.text != "" {
		sections = append(sections, m.output.view(m.state.Height > 0))
	} else if v := m.activeView(); v != nil {
		sections = append(sections, v.View())
	}
	sections = append(sections, m.renderStatusBar(), m.cmdBar.View())
	result := strings.Join(sections, "\n")

	// Pad to terminal height so the alt-screen line diff leaves no stale rows.
	if lines := strings.Count(result, "\n") + 1; lines < m.state.Height {
		result += strings.Repeat("\n", m.state.Height-lines)
	}
	return result
}

// ── rendering helpers ────────────────────────────────────────────────────────

func (m *appModel) renderHeader() string {
	header := formatter.StylePurple.Render("taskdesk")

	var crumbs []string
	for _, v := range m.viewStack {
		if t := v.Title(); t != "" {
			crumbs = append(crumbs, t)
		}
	}
	if len(crumbs) > 0 {
		header += " " + formatter.Dim("› "+strings.Join(crumbs, " › "))
	}

	if m.state.User != "" {
		header += "  " + formatter.Dim("[") + formatter.StyleGreen.Render(m.state.User) + formatter.Dim("]")
	} else {
		header += "  " + formatter.Dim("[signed out]")
	}
	return header + "\n" + formatter.Dim(strings.Repeat("─", max(m.state.Width, 20)))
}

func (m *appModel) renderStatusBar() string {
	var hints []string
	switch {
	case m.output.scrollable():
		hints = m.output.hints()
	case !m.output.active:
		if v := m.activeView(); v != nil {
			for _, b := range v.ShortHelp() {
				hints = append(hints, formatter.Dim(b.Help().Key+": "+b.Help().Desc))
			}
		}
		if !m.cmdBar.Focused() {
			if len(m.viewStack) > 1 {
				hints = append(hints, formatter.Dim("esc: back"))
			}
			hints = append(hints, formatter.Dim(": command"))
		}
	}

	sep := lipgloss.NewStyle().Foreground(lipgloss.Color(formatter.ColorDim)).
		Render(strings.Repeat("─", max(m.state.Width, 20)))
	return sep + "\n" + strings.Join(hints, "  ")
}

// pop goes back one view. Home stays.
func (m *appModel) pop() {
	if len(m.viewStack) > 1 {
		m.viewStack = m.viewStack[:len(m.viewStack)-1]
		m.output.clear()
	}
}

// removeView drops v from the stack, or the top view when v is not found.
// The home view is never removed.
func (m *appModel) removeView(v View) {
	for i := len(m.viewStack) - 1; i > 0; i-- {
		if m.viewStack[i] == v {
			m.viewStack = append(m.viewStack[:i], m.viewStack[i+1:]...)
			return
		}
	}
	if len(m.viewStack) > 1 {
		m.viewStack = m.viewStack[:len(m.viewStack)-1]
	}
}

func (m *appModel) show(out string) {
	m.output.show(out, m.state.Width, m.state.ContentHeight())
}

// viewCapturesInput reports whether v has its own text input and should see
// every key, bypassing q, : and esc.
func viewCapturesInput(v View) bool {
	if v == nil {
		return false
	}
	if v.ID() == ViewForm {
		return true
	}
	c, ok := v.(inputCapturer)
	return ok && c.CapturesInput()
}
