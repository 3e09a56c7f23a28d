package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	tea "github.com/charmbracelet/bubbletea"
)

// viewOpeners maps the bare view words to their views.
var viewOpeners = map[string]func(*SharedState) View{
	"home":       func(s *SharedState) View { return newDashboardView(s) },
	"tasks":      func(s *SharedState) View { return newTasksView(s) },
	"deliveries": func(s *SharedState) View { return newDeliveriesView(s) },
	"billing":    func(s *SharedState) View { return newBillingView(s) },
	"projects":   func(s *SharedState) View { return newProjectsView(s) },
	"quotes":     func(s *SharedState) View { return newQuotesView(s) },
	"requesters": func(s *SharedState) View { return newRequestersView(s) },
}

// executeCommand dispatches a text command and returns a tea.Cmd.
// Commands may return cmdOutputMsg for display, navigation messages
// for view transitions, or quitMsg for exit. Anything the bar does not
// handle itself runs through the cobra tree.
func (c *commandBar) executeCommand(input string) tea.Cmd {
	parts, err := splitShellArgs(input)
	if err != nil {
		return outputCmd(errorOutput(err))
	}
	if len(parts) == 0 {
		return nil
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	if open, ok := viewOpeners[cmd]; ok && len(args) == 0 {
		if cmd == "home" {
			return replaceView(open(c.state))
		}
		return pushView(open(c.state))
	}

	switch cmd {
	case "task", "delivery":
		if len(args) == 0 {
			return outputCmd(formatter.StyleYellow.Render("Usage: " + cmd + " <id>"))
		}
		// "task 12" opens the task; "task list" is the cobra alias.
		if id, err := parseID(args[0]); err == nil && len(args) == 1 {
			if cmd == "task" {
				return pushView(newTaskDetailView(c.state, id))
			}
			return pushView(newDeliveryDetailView(c.state, id))
		}
	case "new":
		return c.cmdNew(args)
	case "login":
		if len(args) == 0 {
			c.Blur()
			return loginCmd(c.state)
		}
	case "logout":
		return logoutCmd(c.state)
	case "help":
		if len(args) == 0 {
			return outputCmd(formatter.FormatShellHelp())
		}
	case "clear":
		return nil
	case "exit", "quit":
		return func() tea.Msg { return quitMsg{} }
	case "tui":
		return outputCmd(formatter.Dim("Already in the TUI."))
	}

	return c.cobraCmd(parts)
}

func (c *commandBar) cmdNew(args []string) tea.Cmd {
	what := ""
	if len(args) > 0 {
		what = strings.ToLower(args[0])
	}
	c.Blur()
	switch what {
	case "task":
		return taskFormCmd(c.state, nil)
	case "delivery":
		return newDeliveryWizard(c.state, 0)
	case "period":
		return newPeriodCmd(c.state)
	}
	return outputCmd(formatter.StyleYellow.Render("Usage: new task|delivery|period"))
}

// cobraCmd runs parts through the cobra tree in the background and shows
// what it printed. Mutations refresh the views underneath.
func (c *commandBar) cobraCmd(parts []string) tea.Cmd {
	app := c.state.App
	return tea.Batch(
		loadingCmd(fmt.Sprintf("Running %s...", strings.Join(parts, " "))),
		func() tea.Msg {
			return actionDoneMsg{output: captureCobraOutput(app, parts)}
		},
	)
}
