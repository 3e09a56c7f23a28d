package cli

import (
	"errors"

	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/service"
	tea "github.com/charmbracelet/bubbletea"
)

// loginCmd pushes the credentials form and signs in when it completes.
func loginCmd(state *SharedState) tea.Cmd {
	in := &domain.LoginInput{}
	return startWizardCmd(state, "Sign In", loginForm(in), func() tea.Cmd {
		creds := *in
		return tea.Batch(loadingCmd("Signing in..."), func() tea.Msg {
			ctx, cancel := state.RequestContext()
			defer cancel()
			sess, err := state.App.Sessions.Login(ctx, creds)
			if err != nil {
				return cmdOutputMsg{output: errorOutput(err)}
			}
			return sessionChangedMsg{
				user:   sess.Username,
				output: doneMark("Signed in as " + formatter.StyleGreen.Render(sess.Username)),
			}
		})
	})
}

// logoutCmd signs out in the background.
func logoutCmd(state *SharedState) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := state.RequestContext()
		defer cancel()
		if err := state.App.Sessions.Logout(ctx); err != nil {
			if errors.Is(err, service.ErrNotSignedIn) {
				return cmdOutputMsg{output: formatter.Dim("Not signed in.")}
			}
			return cmdOutputMsg{output: errorOutput(err)}
		}
		return sessionChangedMsg{output: doneMark("Signed out.")}
	}
}
