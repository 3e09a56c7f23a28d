package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/taskdesk/internal/teatest"
)

// waitTimeout bounds how long a test waits for backend round trips.
const waitTimeout = 3 * time.Second

// TestDriver wraps teatest.Driver with inspection methods for the app
// model: the view stack, shared state and command bar focus.
type TestDriver struct {
	*teatest.Driver
}

// NewTestDriver creates a TestDriver from a test App.
// It constructs the appModel, sets terminal size, drains Init() and waits
// for the dashboard to finish loading.
func NewTestDriver(t *testing.T, app *App) *TestDriver {
	t.Helper()

	m := newAppModel(app)
	d := &TestDriver{Driver: teatest.New(t, m, teatest.WithSize(120, 40))}
	d.DrainInit()
	d.Await(func() bool {
		dash, ok := d.viewAt(0).(*dashboardView)
		return ok && !dash.loading
	})
	return d
}

// ── High-level helpers ───────────────────────────────────────────────────────

// Command focuses the command bar with ':', types the command, and presses Enter.
// After execution, it blurs the command bar (via Esc) so subsequent key presses
// route to the active view rather than the text input.
func (d *TestDriver) Command(input string) {
	d.T.Helper()
	d.PressKey(':')
	d.Type(input)
	d.PressEnter()
	if d.CmdBarFocused() {
		d.PressEsc()
	}
}

// Await fails the test unless cond holds before waitTimeout.
func (d *TestDriver) Await(cond func() bool) {
	d.T.Helper()
	if !d.WaitFor(cond, waitTimeout) {
		d.T.Fatalf("condition not met within %s\nview:\n%s", waitTimeout, d.View())
	}
}

// AwaitView waits for a view with id on top of the stack.
func (d *TestDriver) AwaitView(id ViewID) {
	d.T.Helper()
	d.Await(func() bool { return d.ActiveViewID() == id })
}

// AwaitOutput waits until the output area contains s.
func (d *TestDriver) AwaitOutput(s string) {
	d.T.Helper()
	d.Await(func() bool { return strings.Contains(d.LastOutput(), s) })
}

// awaitTable waits for the active view to be a table of T with its page
// loaded, and returns it.
func awaitTable[T any](d *TestDriver) *tableView[T] {
	d.T.Helper()
	var tv *tableView[T]
	d.Await(func() bool {
		v, ok := d.activeView().(*tableView[T])
		if ok {
			tv = v
		}
		return ok && !v.loading && len(v.pending) == 0
	})
	return tv
}

// ── App model inspection ─────────────────────────────────────────────────────

func (d *TestDriver) appModel() appModel {
	return d.Model.(appModel)
}

func (d *TestDriver) activeView() View {
	m := d.appModel()
	return m.activeView()
}

func (d *TestDriver) viewAt(i int) View {
	m := d.appModel()
	if i >= len(m.viewStack) {
		return nil
	}
	return m.viewStack[i]
}

// ActiveViewID returns the ViewID of the top view on the stack.
func (d *TestDriver) ActiveViewID() ViewID {
	v := d.activeView()
	if v == nil {
		return ViewID(-1)
	}
	return v.ID()
}

// ActiveViewTitle returns the Title() of the top view on the stack.
func (d *TestDriver) ActiveViewTitle() string {
	v := d.activeView()
	if v == nil {
		return ""
	}
	return v.Title()
}

// ViewStackLen returns the number of views on the stack.
func (d *TestDriver) ViewStackLen() int {
	return len(d.appModel().viewStack)
}

// ViewStackIDs returns the ViewIDs of all views on the stack, bottom to top.
func (d *TestDriver) ViewStackIDs() []ViewID {
	m := d.appModel()
	ids := make([]ViewID, len(m.viewStack))
	for i, v := range m.viewStack {
		ids[i] = v.ID()
	}
	return ids
}

// State returns the shared state for inspection.
func (d *TestDriver) State() *SharedState {
	return d.appModel().state
}

// IsQuitting returns whether the app has signaled a quit, either through
// the model or a tea.QuitMsg seen by the driver.
func (d *TestDriver) IsQuitting() bool {
	return d.appModel().quitting || d.Quitting
}

// CmdBarFocused returns whether the command bar currently has focus.
func (d *TestDriver) CmdBarFocused() bool {
	m := d.appModel()
	return m.cmdBar.Focused()
}

// LastOutput returns the last command output displayed in the content area.
func (d *TestDriver) LastOutput() string {
	return d.appModel().output.text
}
