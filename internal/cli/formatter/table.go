package formatter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alexanderramin/taskdesk/internal/table"
	"github.com/charmbracelet/lipgloss"
)

// TableOptions controls the interactive parts of a rendered table.
type TableOptions struct {
	// Cursor is the highlighted row; negative disables highlighting.
	Cursor int
	// FocusCol is the header that receives the focus style; negative
	// disables it.
	FocusCol int
	// MaxCellWidth truncates longer cells; zero leaves them alone.
	MaxCellWidth int
}

// RenderTable renders a simple aligned table with a header separator line.
// Headers are rendered with the Header style. Columns are padded to the
// maximum width found in each column across both headers and rows.
func RenderTable(headers []string, rows [][]string) string {
	return RenderTableWith(headers, rows, TableOptions{Cursor: -1, FocusCol: -1})
}

// RenderTableWith is RenderTable with a highlighted row and header.
func RenderTableWith(headers []string, rows [][]string, opts TableOptions) string {
	if len(headers) == 0 {
		return ""
	}

	cols := len(headers)

	if opts.MaxCellWidth > 0 {
		clipped := make([][]string, len(rows))
		for r, row := range rows {
			clipped[r] = make([]string, len(row))
			for i, cell := range row {
				if lipgloss.Width(cell) > opts.MaxCellWidth && cell == stripStyles(cell) {
					cell = Truncate(cell, opts.MaxCellWidth)
				}
				clipped[r][i] = cell
			}
		}
		rows = clipped
	}

	// Measure visible width so ANSI escapes don't skew alignment.
	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	const colGap = 2

	var b strings.Builder

	// Rows carry a two-column cursor gutter when highlighting is on.
	gutter := ""
	if opts.Cursor >= 0 {
		gutter = "  "
	}

	b.WriteString(gutter)
	for i, h := range headers {
		style := StyleHeader
		if i == opts.FocusCol {
			style = StyleFocusCol
		}
		b.WriteString(style.Render(h))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", max(widths[i]-lipgloss.Width(h), 0)+colGap))
		}
	}
	b.WriteString("\n")

	b.WriteString(gutter)
	for i, w := range widths {
		b.WriteString(StyleDim.Render(strings.Repeat("─", w)))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")

	for r, row := range rows {
		var line strings.Builder
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			line.WriteString(cell)
			if i < cols-1 {
				line.WriteString(strings.Repeat(" ", max(widths[i]-lipgloss.Width(cell), 0)+colGap))
			}
		}
		if r == opts.Cursor {
			b.WriteString(StyleCursorRow.Render("▸ " + line.String()))
		} else {
			b.WriteString(gutter + line.String())
		}
		b.WriteString("\n")
	}

	return b.String()
}

// SortMark is the header suffix for a sort indicator.
func SortMark(ind table.Indicator) string {
	switch ind {
	case table.IndicatorAsc:
		return " ▲"
	case table.IndicatorDesc:
		return " ▼"
	}
	return ""
}

// PageFooter renders "page 2/5 · 47 records · 10 per page".
func PageFooter(p table.PageInfo) string {
	pages := max(p.TotalPages, 1)
	noun := "records"
	if p.TotalElements == 1 {
		noun = "record"
	}
	return fmt.Sprintf("page %d/%d · %d %s · %d per page",
		p.CurrentPage+1, pages, p.TotalElements, noun, p.PageSize)
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripStyles(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
