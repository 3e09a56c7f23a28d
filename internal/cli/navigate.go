package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Navigation messages used by views to request view transitions.
// The appModel handles these in its Update method.

// pushViewMsg pushes a new view onto the navigation stack.
type pushViewMsg struct {
	view View
}

// popViewMsg pops the current view off the navigation stack,
// returning to the previous view.
type popViewMsg struct{}

// replaceViewMsg replaces the current top view with a new one.
type replaceViewMsg struct {
	view View
}

// refreshViewMsg asks every view on the stack to reload its data.
type refreshViewMsg struct{}

// cmdOutputMsg carries text output from a command execution
// to be displayed transiently in the current view.
type cmdOutputMsg struct {
	output string
}

// cmdLoadingMsg shows a dim placeholder while a command runs.
type cmdLoadingMsg struct {
	message string
}

// wizardCompleteMsg is sent when a wizard form completes or is cancelled.
// The appModel handles it atomically: remove the wizard view, then run nextCmd.
type wizardCompleteMsg struct {
	view    View
	nextCmd tea.Cmd
}

// broadcastMsg marks messages the appModel delivers to every view on the
// stack rather than only the active one. Async results use it so a view
// covered by a form still receives its data.
type broadcastMsg interface {
	broadcast()
}

// sessionChangedMsg is broadcast after login or logout so views that show
// the signed-in user re-read it. user is empty after logout.
type sessionChangedMsg struct {
	user   string
	output string
}

func (sessionChangedMsg) broadcast() {}

// quitMsg signals the app to quit.
type quitMsg struct{}

// pushView returns a tea.Cmd that pushes a view onto the stack.
func pushView(v View) tea.Cmd {
	return func() tea.Msg { return pushViewMsg{view: v} }
}

// popView returns a tea.Cmd that pops the current view.
func popView() tea.Cmd {
	return func() tea.Msg { return popViewMsg{} }
}

// replaceView returns a tea.Cmd that replaces the top view.
func replaceView(v View) tea.Cmd {
	return func() tea.Msg { return replaceViewMsg{view: v} }
}

func refreshViews() tea.Cmd {
	return func() tea.Msg { return refreshViewMsg{} }
}

// outputCmd returns a tea.Cmd that sends a cmdOutputMsg.
func outputCmd(s string) tea.Cmd {
	if s == "" {
		return nil
	}
	return func() tea.Msg { return cmdOutputMsg{output: s} }
}

func loadingCmd(message string) tea.Cmd {
	return func() tea.Msg { return cmdLoadingMsg{message: message} }
}

// actionDoneMsg reports a finished mutation. The appModel shows the output
// and asks every view to reload.
type actionDoneMsg struct {
	output string
}

// actionCmd runs fn in the background under the request timeout. Failures
// are shown as errors; success triggers actionDoneMsg.
func actionCmd(state *SharedState, fn func(ctx context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := state.RequestContext()
		defer cancel()
		out, err := fn(ctx)
		if err != nil {
			return cmdOutputMsg{output: errorOutput(err)}
		}
		return actionDoneMsg{output: out}
	}
}
