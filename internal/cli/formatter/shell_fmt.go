package formatter

import (
	"fmt"
	"strings"
)

// FormatWelcome renders the banner shown on the dashboard.
func FormatWelcome(user string) string {
	var b strings.Builder

	b.WriteString(StylePurple.Render("  taskdesk") + "\n")
	b.WriteString(StyleDim.Render("  ─────────────────────────────") + "\n")
	if user != "" {
		b.WriteString("  " + Dim("signed in as ") + StyleGreen.Render(user) + "\n")
	} else {
		b.WriteString("  " + StyleYellow.Render("not signed in") + Dim("  press l or type :login") + "\n")
	}
	return b.String()
}

// helpCategory groups commands under a section header for the help display.
type helpCategory struct {
	title    string
	commands [][]string
}

func renderHelpCategory(cat helpCategory) string {
	var b strings.Builder
	b.WriteString("\n " + StyleHeader.Render(strings.ToUpper(cat.title)) + "\n")
	for _, c := range cat.commands {
		b.WriteString(fmt.Sprintf("  %-30s %s\n",
			StyleGreen.Render(c[0]),
			StyleDim.Render(c[1])))
	}
	return b.String()
}

// FormatShellHelp renders the categorized command-bar reference.
func FormatShellHelp() string {
	categories := []helpCategory{
		{
			title: "Navigation",
			commands: [][]string{
				{"tasks", "Open the tasks table"},
				{"task <id>", "Open one task"},
				{"deliveries", "Open deliveries grouped by task"},
				{"delivery <id>", "Open one delivery and its items"},
				{"billing", "Open billing periods"},
				{"projects / quotes / requesters", "Open reference tables"},
			},
		},
		{
			title: "Creation",
			commands: [][]string{
				{"new task", "Task form"},
				{"new delivery", "Delivery wizard"},
				{"new period", "Open a billing period"},
			},
		},
		{
			title: "Session",
			commands: [][]string{
				{"login", "Sign in"},
				{"logout", "Sign out and forget the local session"},
				{"whoami", "Show the signed-in user"},
			},
		},
		{
			title: "Tables",
			commands: [][]string{
				{"↑↓ ←→", "Move row / focus column"},
				{"[ ]  + -", "Previous/next page, page size"},
				{"s  /  x  X", "Sort, filter, clear filter, clear all"},
				{"v  V  H", "Toggle column, show all, hide all"},
				{"enter  r", "Open row, reload"},
			},
		},
		{
			title: "Utilities",
			commands: [][]string{
				{"<any CLI command>", "e.g. tasks status 12 DONE"},
				{"help", "Show this reference"},
				{"exit / quit", "Quit taskdesk"},
			},
		},
	}

	var b strings.Builder
	for _, cat := range categories {
		b.WriteString(renderHelpCategory(cat))
	}
	return RenderBox("Commands", b.String())
}

// FormatFields renders label/value pairs with aligned labels.
func FormatFields(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p[0]))
	}
	var b strings.Builder
	for _, p := range pairs {
		b.WriteString("  " + StyleDim.Render(fmt.Sprintf("%-*s", width, p[0])) + "  " + OrDash(p[1]) + "\n")
	}
	return b.String()
}
