package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeItem is one row of a tree: a task at level 0, its deliveries below.
type TreeItem struct {
	Title  string
	Ref    string // short reference shown before the title, e.g. "#12"
	Level  int
	IsLast bool
	Status string
	Detail string
}

// RenderTree draws items with box connectors and lines up the detail badges
// in one column.
func RenderTree(items []TreeItem) string {
	rows := make([]string, len(items))
	width := 0
	for i, item := range items {
		rows[i] = treeConnector(item) + treeTitle(item)
		width = max(width, lipgloss.Width(rows[i]))
	}

	var b strings.Builder
	for i, item := range items {
		b.WriteString(rows[i])
		if item.Detail != "" {
			pad := width - lipgloss.Width(rows[i])
			b.WriteString(strings.Repeat(" ", pad) + "  " + StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Detail)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func treeConnector(item TreeItem) string {
	if item.Level == 0 {
		return ""
	}
	end := "├─ "
	if item.IsLast {
		end = "└─ "
	}
	return strings.Repeat("│  ", item.Level-1) + end
}

// treeTitle marks finished work green, active work amber and rejected or
// blocked work red.
func treeTitle(item TreeItem) string {
	title := item.Title
	if item.Ref != "" {
		title = StyleDim.Render(item.Ref+" ") + title
	}
	switch strings.ToUpper(item.Status) {
	case "DONE", "APPROVED", "DELIVERED", "CLOSED":
		return StyleGreen.Render("✔ ") + Dim(title)
	case "IN_PROGRESS", "IN_REVIEW":
		return StyleYellowBold.Render("▶ " + title)
	case "REJECTED", "BLOCKED":
		return StyleRed.Render("✖ ") + title
	}
	return title
}
