package cli

import (
	"bytes"
	"strings"

	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
)

// captureCobraOutput runs a command through the cobra tree and returns what
// it printed. The copy of app has no terminal, so commands that would prompt
// ask for their flags instead.
func captureCobraOutput(app *App, args []string) string {
	headless := *app
	headless.IsInteractive = nil

	var buf bytes.Buffer
	root := NewRootCmd(&headless)
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		if buf.Len() > 0 && !strings.HasSuffix(buf.String(), "\n") {
			buf.WriteString("\n")
		}
		buf.WriteString(errorOutput(err))
		if strings.Contains(err.Error(), "unknown command") {
			buf.WriteString("\n" + formatter.Dim("Type 'help' for the shell commands."))
		}
	}
	out := strings.TrimRight(buf.String(), "\n")
	if out == "" {
		return formatter.Dim("(no output)")
	}
	return out
}
