package cli

import (
	"os"
	"strings"
	"testing"

	"github.com/alexanderramin/taskdesk/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCommandBar creates a commandBar backed by a test SharedState.
func testCommandBar(t *testing.T, app *App) *commandBar {
	t.Helper()
	state := &SharedState{App: app, Width: 120, Height: 40}
	cb := newCommandBar(state)
	return &cb
}

// execMsgs runs a command and returns every message it produces, with
// batches expanded.
func execMsgs(cb *commandBar, input string) []tea.Msg {
	return collectMsgs(cb.executeCommand(input))
}

func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collectMsgs(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// execOutput returns the text a command shows, loading placeholders aside.
func execOutput(cb *commandBar, input string) string {
	var out string
	for _, msg := range execMsgs(cb, input) {
		switch m := msg.(type) {
		case cmdOutputMsg:
			out = m.output
		case actionDoneMsg:
			out = m.output
		}
	}
	return out
}

func pushedView(t *testing.T, msgs []tea.Msg) View {
	t.Helper()
	for _, msg := range msgs {
		if m, ok := msg.(pushViewMsg); ok {
			return m.view
		}
	}
	t.Fatalf("no view pushed, got %v", msgs)
	return nil
}

// --- Shell words ---

func TestCommandBar_ViewWordsPushViews(t *testing.T) {
	cb := testCommandBar(t, testApp(t))

	cases := map[string]ViewID{
		"tasks":      ViewTaskList,
		"deliveries": ViewDeliveryList,
		"billing":    ViewBillingList,
		"projects":   ViewProjectList,
		"quotes":     ViewQuoteList,
		"requesters": ViewRequesterList,
		"TASKS":      ViewTaskList,
	}
	for input, want := range cases {
		v := pushedView(t, execMsgs(cb, input))
		assert.Equal(t, want, v.ID(), input)
	}
}

func TestCommandBar_HomeReplacesTop(t *testing.T) {
	cb := testCommandBar(t, testApp(t))

	msgs := execMsgs(cb, "home")
	require.Len(t, msgs, 1)
	m, ok := msgs[0].(replaceViewMsg)
	require.True(t, ok)
	assert.Equal(t, ViewDashboard, m.view.ID())
}

func TestCommandBar_TaskAndDeliveryIDs(t *testing.T) {
	cb := testCommandBar(t, testApp(t))

	v := pushedView(t, execMsgs(cb, "task 2"))
	assert.Equal(t, ViewTaskDetail, v.ID())

	v = pushedView(t, execMsgs(cb, "delivery #41"))
	require.Equal(t, ViewDeliveryDetail, v.ID())
	assert.Equal(t, "Delivery #41", v.Title())

	assert.Contains(t, execOutput(cb, "task"), "Usage: task <id>")
}

func TestCommandBar_AliasSubcommandsRunCobra(t *testing.T) {
	cb := testCommandBar(t, testApp(t))

	out := execOutput(cb, "task list")
	assert.Contains(t, out, "Task 01")
	assert.Contains(t, out, "3 records")
}

func TestCommandBar_DispatchesToCobra(t *testing.T) {
	cb := testCommandBar(t, testApp(t))

	msgs := execMsgs(cb, "projects list --sort name,desc")
	require.Len(t, msgs, 2)
	loading, ok := msgs[0].(cmdLoadingMsg)
	require.True(t, ok)
	assert.Contains(t, loading.message, "projects list")

	done, ok := msgs[1].(actionDoneMsg)
	require.True(t, ok)
	assert.Less(t, strings.Index(done.output, "Beta Billing"), strings.Index(done.output, "Alpha Portal"))
}

func TestCommandBar_CobraErrorsAreShown(t *testing.T) {
	cb := testCommandBar(t, testApp(t))

	out := execOutput(cb, "task status 1 someday")
	assert.Contains(t, out, "unknown task status")

	out = execOutput(cb, "frobnicate")
	assert.Contains(t, out, "unknown command")
	assert.Contains(t, out, "help")
}

func TestCommandBar_DestructiveCommandsNeedYes(t *testing.T) {
	env := newTestEnv(t, testutil.WithTasks(2)).signIn(t)
	cb := testCommandBar(t, env.app)

	out := execOutput(cb, "task delete 1")
	assert.Contains(t, out, "--yes")
	_, ok := env.backend.Task(1)
	assert.True(t, ok)

	execOutput(cb, "task delete 1 --yes")
	_, ok = env.backend.Task(1)
	assert.False(t, ok)
}

func TestCommandBar_CobraNeverReadsStdin(t *testing.T) {
	env := newTestEnv(t)
	cb := testCommandBar(t, env.app)

	out := execOutput(cb, "login -u ana --password-stdin")
	assert.Contains(t, out, "reading password from stdin")
}

func TestCommandBar_ExitAndQuit(t *testing.T) {
	cb := testCommandBar(t, testApp(t))

	for _, input := range []string{"exit", "quit"} {
		msgs := execMsgs(cb, input)
		require.Len(t, msgs, 1, input)
		assert.IsType(t, quitMsg{}, msgs[0], input)
	}
}

func TestCommandBar_ClearIsNoop(t *testing.T) {
	cb := testCommandBar(t, testApp(t))
	assert.Nil(t, cb.executeCommand("clear"))
	assert.Nil(t, cb.executeCommand("   "))
}

func TestCommandBar_HelpListsCommands(t *testing.T) {
	cb := testCommandBar(t, testApp(t))

	out := execOutput(cb, "help")
	assert.Contains(t, out, "deliveries")
	assert.Contains(t, out, "new task")

	out = execOutput(cb, "help tasks")
	assert.Contains(t, out, "Manage tasks")
}

func TestCommandBar_TUIWord(t *testing.T) {
	cb := testCommandBar(t, testApp(t))
	assert.Contains(t, execOutput(cb, "tui"), "Already in the TUI.")
}

func TestCommandBar_NewStartsWizards(t *testing.T) {
	cb := testCommandBar(t, testApp(t))
	cb.Focus()

	v := pushedView(t, execMsgs(cb, "new delivery"))
	assert.Equal(t, ViewForm, v.ID())
	assert.False(t, cb.Focused(), "the form takes the keyboard")

	v = pushedView(t, execMsgs(cb, "new period"))
	assert.Equal(t, ViewForm, v.ID())

	assert.Contains(t, execOutput(cb, "new invoice"), "Usage: new task|delivery|period")
}

func TestCommandBar_LoginWithoutArgsOpensForm(t *testing.T) {
	cb := testCommandBar(t, newTestEnv(t).app)
	cb.Focus()

	v := pushedView(t, execMsgs(cb, "login"))
	assert.Equal(t, "Sign In", v.Title())
	assert.False(t, cb.Focused())
}

func TestCommandBar_LogoutSignsOut(t *testing.T) {
	cb := testCommandBar(t, testApp(t))

	msgs := execMsgs(cb, "logout")
	require.Len(t, msgs, 1)
	m, ok := msgs[0].(sessionChangedMsg)
	require.True(t, ok)
	assert.Empty(t, m.user)

	msgs = execMsgs(cb, "logout")
	out, ok := msgs[0].(cmdOutputMsg)
	require.True(t, ok)
	assert.Contains(t, out.output, "Not signed in.")
}

func TestCommandBar_UnbalancedQuotes(t *testing.T) {
	cb := testCommandBar(t, testApp(t))
	assert.NotEmpty(t, execOutput(cb, `item note 3 "unterminated`))
}

// --- History and suggestions ---

func TestCommandBar_HistoryPersists(t *testing.T) {
	app := testApp(t)
	cb := testCommandBar(t, app)
	cb.Focus()

	for _, line := range []string{"tasks", "billing"} {
		cb.input.SetValue(line)
		cb.Update(tea.KeyMsg{Type: tea.KeyEnter})
	}
	data, err := os.ReadFile(app.HistoryPath)
	require.NoError(t, err)
	assert.Equal(t, "tasks\nbilling\n", string(data))

	again := testCommandBar(t, app)
	again.Focus()
	again.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "billing", again.input.Value())
	again.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "tasks", again.input.Value())
	again.Update(tea.KeyMsg{Type: tea.KeyDown})
	again.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Empty(t, again.input.Value())
}

func TestCommandLines_WalksCobraTree(t *testing.T) {
	lines := commandLines(NewRootCmd(testApp(t)))

	assert.Contains(t, lines, "tasks list")
	assert.Contains(t, lines, "deliveries create")
	assert.Contains(t, lines, "items branch")
	assert.Contains(t, lines, "billing report")
	assert.Contains(t, lines, "new delivery")
	assert.NotContains(t, lines, "tui")
	assert.IsNonDecreasing(t, lines)
}

func TestCommandLines_SkipsHidden(t *testing.T) {
	root := &cobra.Command{Use: "root"}
	root.AddCommand(
		&cobra.Command{Use: "shown", Run: func(*cobra.Command, []string) {}},
		&cobra.Command{Use: "secret", Hidden: true, Run: func(*cobra.Command, []string) {}},
	)
	lines := commandLines(root)
	assert.Contains(t, lines, "shown")
	assert.NotContains(t, lines, "secret")
}

func TestFilterSuggestions(t *testing.T) {
	pool := []string{"billing", "billing close", "billing list", "tasks", "tasks list"}

	assert.Equal(t, []string{"billing close", "billing list"}, filterSuggestions(pool, "billing "))
	assert.Equal(t, []string{"tasks", "tasks list"}, filterSuggestions(pool, "TA"))
	assert.Empty(t, filterSuggestions(pool, "tasks list"), "an exact line offers nothing further")
	assert.Nil(t, filterSuggestions(pool, "  "))
}
