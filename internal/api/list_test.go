package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/alexanderramin/taskdesk/internal/api"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/table"
	"github.com/alexanderramin/taskdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_EncodesQueryAndDecodesEnvelope(t *testing.T) {
	f := newFixture(t, []testutil.BackendOption{testutil.WithTasks(25)})

	q := table.NewQuery(10).Apply(table.PageChanged{Page: 2})
	page, err := f.api.Tasks.List(context.Background(), q)
	require.NoError(t, err)

	assert.Len(t, page.Content, 5)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 25, page.TotalElements)

	reqs := f.backend.RequestsTo(http.MethodGet, "/tasks")
	require.Len(t, reqs, 1)
	assert.Equal(t, "2", reqs[0].Query.Get("page"))
	assert.Equal(t, "10", reqs[0].Query.Get("size"))
}

func TestList_SortAndFilter(t *testing.T) {
	f := newFixture(t, []testutil.BackendOption{testutil.WithTasks(25)})

	q := table.NewQuery(5).
		Apply(table.SortChanged{Field: "title", Direction: table.Desc}).
		Apply(table.FilterChanged{Field: "title", Value: "Task 1"})
	page, err := f.api.Tasks.List(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 10, page.TotalElements)
	require.NotEmpty(t, page.Content)
	assert.Equal(t, "Task 19", page.Content[0].Title)

	req := f.backend.RequestsTo(http.MethodGet, "/tasks")[0]
	assert.Equal(t, "title,desc", req.Query.Get("sort"))
	assert.Equal(t, "Task 1", req.Query.Get("title"))
}

func TestList_BlankFilterIsNotSent(t *testing.T) {
	f := newFixture(t, []testutil.BackendOption{testutil.WithTasks(3)})

	q := table.NewQuery(10)
	q.Filters["title"] = "   "
	_, err := f.api.Tasks.List(context.Background(), q)
	require.NoError(t, err)

	req := f.backend.RequestsTo(http.MethodGet, "/tasks")[0]
	assert.NotContains(t, req.Query, "title")
}

func TestList_EmptyPageHasEmptyContent(t *testing.T) {
	f := newFixture(t, nil)

	page, err := f.api.Tasks.List(context.Background(), table.NewQuery(10))
	require.NoError(t, err)
	assert.NotNil(t, page.Content)
	assert.True(t, page.Empty())
	assert.Equal(t, 0, page.TotalPages)
}

func TestPageInfo(t *testing.T) {
	info := api.PageInfo(&domain.Page[domain.Task]{CurrentPage: 1, TotalPages: 3, PageSize: 10, TotalElements: 25})
	assert.Equal(t, table.PageInfo{CurrentPage: 1, PageSize: 10, TotalElements: 25, TotalPages: 3}, info)
}

func TestCatalog_ListGetAll(t *testing.T) {
	f := newFixture(t, []testutil.BackendOption{testutil.WithReferenceData()})
	ctx := context.Background()

	projects, err := f.api.Projects.All(ctx, nil)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "ALPHA · Alpha Portal", projects[0].Label())

	p, err := f.api.Projects.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "BETA", p.Code)

	requesters, err := f.api.Requesters.All(ctx, table.Filters{"department": "finance"})
	require.NoError(t, err)
	require.Len(t, requesters, 1)
	assert.Equal(t, "Bruno Lima", requesters[0].Name)

	quotes, err := f.api.Quotes.List(ctx, table.NewQuery(10))
	require.NoError(t, err)
	require.Len(t, quotes.Content, 1)
	assert.Equal(t, domain.QuoteApproved, quotes.Content[0].Status)

	_, err = f.api.Requesters.Get(ctx, 99)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestAll_WalksPages(t *testing.T) {
	f := newFixture(t, []testutil.BackendOption{testutil.WithTasks(7)})

	tasks, err := api.All[domain.Task](context.Background(), f.api.Client, "tasks", table.NewQuery(3), 10)
	require.NoError(t, err)
	assert.Len(t, tasks, 7)
	assert.Len(t, f.backend.RequestsTo(http.MethodGet, "/tasks"), 3)
}

func TestAll_StopsAtMaxPages(t *testing.T) {
	f := newFixture(t, []testutil.BackendOption{testutil.WithTasks(7)})

	tasks, err := api.All[domain.Task](context.Background(), f.api.Client, "tasks", table.NewQuery(3), 2)
	require.NoError(t, err)
	assert.Len(t, tasks, 6)
}
