package cli

import (
	"fmt"

	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/alexanderramin/taskdesk/internal/domain"
)

// The reference views are read-only tables.

func newProjectsView(state *SharedState) *tableView[domain.Project] {
	return newTableView(state, tableSpec[domain.Project]{
		id:      ViewProjectList,
		title:   "Projects",
		prefKey: "projects",
		noun:    "projects",
		columns: projectColumns(),
		fetch:   state.App.API.Projects.List,
	})
}

func newQuotesView(state *SharedState) *tableView[domain.Quote] {
	return newTableView(state, tableSpec[domain.Quote]{
		id:      ViewQuoteList,
		title:   "Quotes",
		prefKey: "quotes",
		noun:    "quotes",
		columns: quoteColumns(),
		fetch:   state.App.API.Quotes.List,
		detail: func(q domain.Quote) string {
			return formatter.Bold(q.Number) + "  " + q.ProjectName + "\n" +
				formatter.Dim(fmt.Sprintf("%s · %.1fh", formatter.Truncate(q.Description, 100), q.Hours))
		},
	})
}

func newRequestersView(state *SharedState) *tableView[domain.Requester] {
	return newTableView(state, tableSpec[domain.Requester]{
		id:      ViewRequesterList,
		title:   "Requesters",
		prefKey: "requesters",
		noun:    "requesters",
		columns: requesterColumns(),
		fetch:   state.App.API.Requesters.List,
	})
}
