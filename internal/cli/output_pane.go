package cli

import (
	"fmt"

	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// outputPane shows the result of the last command over the active view
// until a non-scroll key dismisses it.
type outputPane struct {
	text   string
	active bool
	vp     viewport.Model
}

func newOutputPane() outputPane {
	vp := viewport.New(0, 0)
	// Letter keys stay free so they can dismiss the pane or reach global shortcuts.
	vp.KeyMap = viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		Up:           key.NewBinding(key.WithKeys("up")),
		Down:         key.NewBinding(key.WithKeys("down")),
	}
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3
	return outputPane{vp: vp}
}

func (p *outputPane) show(text string, width, height int) {
	p.text = text
	p.active = true
	p.vp.SetContent(text)
	p.resize(width, height)
	p.vp.GotoTop()
}

func (p *outputPane) clear() {
	p.text = ""
	p.active = false
}

func (p *outputPane) resize(width, height int) {
	p.vp.Width = width
	p.vp.Height = height
}

func (p *outputPane) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(msg)
	return cmd
}

// scrollable reports whether the text is taller than the pane.
func (p *outputPane) scrollable() bool {
	return p.active && p.vp.TotalLineCount() > p.vp.Height
}

func (p *outputPane) view(sized bool) string {
	if p.active && sized {
		return p.vp.View()
	}
	return p.text
}

// hints are the status bar entries while a long output is on screen.
func (p *outputPane) hints() []string {
	pos := fmt.Sprintf("[%d%%]", int(p.vp.ScrollPercent()*100))
	switch {
	case p.vp.AtTop():
		pos = "[TOP]"
	case p.vp.AtBottom():
		pos = "[END]"
	}
	return []string{formatter.Dim(pos), formatter.Dim("↑↓ pgup/pgdn: scroll"), formatter.Dim("esc: dismiss")}
}

// isOutputScrollKey reports whether msg scrolls the pane instead of dismissing it.
func isOutputScrollKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown,
		tea.KeyHome, tea.KeyEnd, tea.KeyCtrlU, tea.KeyCtrlD:
		return true
	}
	return false
}
