package table

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   int
	Name string
	Due  *time.Time
	Paid bool
}

func testColumns() []Column[record] {
	return []Column[record]{
		{Key: "id", Title: "ID", Sortable: true, Locked: true, Value: func(r record) any { return r.ID }},
		{Key: "name", Title: "Name", Filterable: true, FilterKind: FilterText, Value: func(r record) any { return r.Name }},
		{Key: "due", Title: "Due", Sortable: true, Filterable: true, FilterKind: FilterDate, Value: func(r record) any { return r.Due }},
		{Key: "paid", Title: "Paid", Value: func(r record) any { return r.Paid }},
	}
}

func TestRequestSort_AlternatesStartingAscending(t *testing.T) {
	c := New(testColumns())

	assert.Equal(t, SortChanged{Field: "id", Direction: Asc}, c.RequestSort("id"))
	assert.Equal(t, SortChanged{Field: "id", Direction: Desc}, c.RequestSort("id"))
	assert.Equal(t, SortChanged{Field: "id", Direction: Asc}, c.RequestSort("id"))
	assert.Equal(t, SortChanged{Field: "id", Direction: Desc}, c.RequestSort("id"))
}

func TestRequestSort_NewFieldStartsAscending(t *testing.T) {
	c := New(testColumns())

	c.RequestSort("id")
	c.RequestSort("id") // id desc

	in := c.RequestSort("due")
	assert.Equal(t, SortChanged{Field: "due", Direction: Asc}, in)
	require.Len(t, c.Sort(), 1, "only one sort field may be active")
	assert.Equal(t, IndicatorNone, c.Indicator("id"))
	assert.Equal(t, IndicatorAsc, c.Indicator("due"))
}

func TestRequestSort_IgnoresUnsortableAndUnknown(t *testing.T) {
	c := New(testColumns())

	assert.Nil(t, c.RequestSort("name"))
	assert.Nil(t, c.RequestSort("nope"))
	_, active := c.Sort().Active()
	assert.False(t, active)
}

func TestRequestSort_FollowsSyncedSort(t *testing.T) {
	c := New(testColumns())
	c.SyncSort(Sort{{Field: "due", Direction: Desc}, {Field: "id", Direction: Asc}})

	require.Len(t, c.Sort(), 1)
	assert.Equal(t, IndicatorDesc, c.Indicator("due"))
	assert.Equal(t, SortChanged{Field: "due", Direction: Asc}, c.RequestSort("due"))
}

func TestIndicator_ThreeDistinctStates(t *testing.T) {
	c := New(testColumns())
	states := map[Indicator]bool{}

	states[c.Indicator("id")] = true
	c.RequestSort("id")
	states[c.Indicator("id")] = true
	c.RequestSort("id")
	states[c.Indicator("id")] = true

	assert.Len(t, states, 3)
}

func TestHasActiveFilters_BlankEqualsAbsent(t *testing.T) {
	for _, value := range []string{"", " ", "\t", "  \n "} {
		t.Run(fmt.Sprintf("%q", value), func(t *testing.T) {
			c := New(testColumns())
			c.SetFilter("name", value)
			assert.False(t, c.HasActiveFilters())
			assert.False(t, c.ShowClear("name"))
		})
	}
}

func TestSetFilter_ThenEmptySignalsRemoval(t *testing.T) {
	c := New(testColumns())

	first := c.SetFilter("name", "ab")
	assert.Equal(t, FilterChanged{Field: "name", Value: "ab"}, first)
	assert.True(t, c.HasActiveFilters())
	assert.True(t, c.ShowClear("name"))

	second := c.SetFilter("name", "")
	assert.Equal(t, FilterChanged{Field: "name", Value: ""}, second)
	assert.False(t, c.HasActiveFilters())
	assert.False(t, c.ShowClear("name"))
}

func TestSetFilter_OtherFilterKeepsActive(t *testing.T) {
	c := New(testColumns())
	c.SetFilter("name", "ab")
	c.SetFilter("due", "2025-01-01")

	c.SetFilter("name", "   ")

	assert.True(t, c.HasActiveFilters())
}

func TestSetFilter_TrimsEffectiveValue(t *testing.T) {
	c := New(testColumns())

	in := c.SetFilter("name", "  ab ")

	assert.Equal(t, FilterChanged{Field: "name", Value: "ab"}, in)
	assert.Equal(t, "  ab ", c.Filter("name"))
}

func TestClearFilter_AndClearAll(t *testing.T) {
	c := New(testColumns())
	c.SetFilter("name", "ab")
	c.SetFilter("due", "2025")

	assert.Equal(t, FilterChanged{Field: "name"}, c.ClearFilter("name"))
	assert.Equal(t, Filters{"due": "2025"}, c.Filters())

	assert.Equal(t, FiltersCleared{}, c.ClearFilters())
	assert.Empty(t, c.Filters())
	assert.False(t, c.HasActiveFilters())
}

func TestSyncFilters_ReplacesLocalBuffer(t *testing.T) {
	c := New(testColumns())
	c.SetFilter("name", "ab")

	c.SyncFilters(Filters{})
	assert.Empty(t, c.Filters())

	c.SyncFilters(Filters{"due": "2025", "name": " "})
	assert.Equal(t, Filters{"due": "2025"}, c.Filters())
}

func TestChangePage_DoesNotClamp(t *testing.T) {
	c := New(testColumns())
	c.SyncPage(PageInfo{CurrentPage: 0, TotalPages: 3, PageSize: 10, TotalElements: 25})

	assert.Equal(t, PageChanged{Page: 7}, c.ChangePage(7))
	assert.Equal(t, PageChanged{Page: -1}, c.ChangePage(-1))
	assert.False(t, c.CanGoTo(-1))
	assert.False(t, c.CanGoTo(3))
	assert.True(t, c.CanGoTo(2))
}

func TestToggleColumn_TwiceRestoresHiddenSet(t *testing.T) {
	c := New(testColumns())
	c.ToggleColumn("paid")
	before := c.Hidden()

	c.ToggleColumn("name")
	c.ToggleColumn("name")

	assert.Equal(t, before, c.Hidden())
}

func TestToggleColumn_VisiblePreservesOrder(t *testing.T) {
	c := New(testColumns())

	in := c.ToggleColumn("name")

	assert.Equal(t, VisibilityChanged{Hidden: []string{"name"}}, in)
	var keys []string
	for _, col := range c.VisibleColumns() {
		keys = append(keys, col.Key)
	}
	assert.Equal(t, []string{"id", "due", "paid"}, keys)
}

func TestLockedColumn_NeverHidden(t *testing.T) {
	c := New(testColumns())

	assert.Nil(t, c.ToggleColumn("id"))
	for i := 0; i < 3; i++ {
		c.HideAllColumns()
		c.ToggleColumn("name")
		c.HideAllColumns()
	}
	c.SetHidden([]string{"id", "name"})
	c.HideAllColumns()

	assert.NotContains(t, c.Hidden(), "id")
	assert.False(t, c.IsHidden("id"))
	require.Len(t, c.VisibleColumns(), 1)
	assert.Equal(t, "id", c.VisibleColumns()[0].Key)
}

func TestShowAllColumns_ClearsHiddenSet(t *testing.T) {
	c := New(testColumns())
	c.HideAllColumns()

	c.ShowAllColumns()

	assert.Empty(t, c.Hidden())
	assert.Len(t, c.VisibleColumns(), 4)
}

func TestRows_DefaultAndCustomCells(t *testing.T) {
	cols := testColumns()
	cols[1].Cell = func(r record) string { return "<" + r.Name + ">" }
	c := New(cols)
	c.ToggleColumn("due")
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	rows := c.Rows([]record{
		{ID: 1, Name: "alpha", Due: &due, Paid: true},
		{ID: 2, Name: "beta"},
	})

	assert.Equal(t, [][]string{
		{"1", "<alpha>", "yes"},
		{"2", "<beta>", "no"},
	}, rows)
}

func TestColumn_HeaderText(t *testing.T) {
	col := Column[record]{Key: "id", Title: "ID"}
	assert.Equal(t, "ID", col.HeaderText())

	col.Header = func(c Column[record]) string { return "#" + c.Key }
	assert.Equal(t, "#id", col.HeaderText())
}
