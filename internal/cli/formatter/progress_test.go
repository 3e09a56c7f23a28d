package formatter

import (
	"strings"
	"testing"

	"github.com/alexanderramin/taskdesk/internal/table"
	"github.com/stretchr/testify/assert"
)

func TestRenderProgress(t *testing.T) {
	tests := []struct {
		name        string
		done, total int
		width       int
		filled      int
		suffix      string
	}{
		{"nothing done", 0, 4, 8, 0, "0/4"},
		{"half", 2, 4, 8, 4, "2/4"},
		{"all", 4, 4, 8, 8, "4/4"},
		{"no items", 0, 0, 8, 0, "0/0"},
		{"tiny width clamps to 2", 1, 1, 1, 2, "1/1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripStyles(RenderProgress(tt.done, tt.total, tt.width))
			assert.Equal(t, tt.filled, strings.Count(got, filledBlock))
			assert.True(t, strings.HasSuffix(got, tt.suffix), got)
		})
	}
}

func TestRenderTableAlignsColumns(t *testing.T) {
	got := stripStyles(RenderTable([]string{"ID", "TITLE"}, [][]string{
		{"1", "Short"},
		{"1234", StyleRed.Render("Styled")},
	}))
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "ID    TITLE", lines[0])
	assert.Equal(t, "1     Short", lines[2])
	assert.Equal(t, "1234  Styled", lines[3])
}

func TestRenderTableWithCursor(t *testing.T) {
	got := stripStyles(RenderTableWith([]string{"A"}, [][]string{{"x"}, {"y"}},
		TableOptions{Cursor: 1, FocusCol: 0}))
	assert.Contains(t, got, "  x")
	assert.Contains(t, got, "▸ y")
}

func TestRenderTableTruncatesPlainCells(t *testing.T) {
	got := stripStyles(RenderTableWith([]string{"T"}, [][]string{{"a very long title"}},
		TableOptions{Cursor: -1, FocusCol: -1, MaxCellWidth: 6}))
	assert.Contains(t, got, "a ver…")
}

func TestSortMarkAndFooter(t *testing.T) {
	assert.Equal(t, " ▲", SortMark(table.IndicatorAsc))
	assert.Equal(t, " ▼", SortMark(table.IndicatorDesc))
	assert.Equal(t, "", SortMark(table.IndicatorNone))

	assert.Equal(t, "page 2/5 · 47 records · 10 per page",
		PageFooter(table.PageInfo{CurrentPage: 1, PageSize: 10, TotalElements: 47, TotalPages: 5}))
	assert.Equal(t, "page 1/1 · 0 records · 10 per page",
		PageFooter(table.PageInfo{PageSize: 10}))
}

func TestRenderTree(t *testing.T) {
	got := stripStyles(RenderTree([]TreeItem{
		{Title: "Fix login", Ref: "T-1"},
		{Title: "Hotfix", Level: 1, Status: "DELIVERED", Detail: "2 items"},
		{Title: "Follow-up", Level: 1, IsLast: true, Status: "IN_PROGRESS"},
	}))
	assert.Contains(t, got, "T-1 Fix login")
	assert.Contains(t, got, "├─ ✔ Hotfix")
	assert.Contains(t, got, "[ 2 items ]")
	assert.Contains(t, got, "└─ ▶ Follow-up")
}
