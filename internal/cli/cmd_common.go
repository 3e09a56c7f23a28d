package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alexanderramin/taskdesk/internal/api"
	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// commandContext bounds one CLI action by the configured request timeout.
func (a *App) commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.RequestTimeout)
}

// spin shows a spinner on stderr while fn runs, on terminals only.
func (a *App) spin(cmd *cobra.Command, msg string, fn func() error) error {
	stop := formatter.StartSpinner(cmd.ErrOrStderr(), msg, a.interactive())
	defer stop()
	return fn()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive number", s)
	}
	return id, nil
}

// sortValue is a pflag.Value for "field,dir".
type sortValue struct {
	field *table.SortField
}

var _ pflag.Value = sortValue{}

func (v sortValue) String() string {
	if v.field == nil || v.field.Field == "" {
		return ""
	}
	return v.field.Field + "," + string(v.field.Direction)
}

func (v sortValue) Set(s string) error {
	f, ok := table.ParseSort(s)
	if !ok {
		return fmt.Errorf("expected field[,asc|desc], got %q", s)
	}
	*v.field = f
	return nil
}

func (sortValue) Type() string { return "field,dir" }

// listFlags are the paging, sorting and filtering flags shared by every
// list command.
type listFlags struct {
	page    int
	size    int
	sort    table.SortField
	filters []string
}

func (f *listFlags) register(cmd *cobra.Command, defaultSize int) {
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&f.size, "size", defaultSize, "Records per page")
	cmd.Flags().Var(sortValue{field: &f.sort}, "sort", "Sort by column, e.g. dueDate,desc")
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "Filter as column=value (repeatable)")
}

// query turns the flags into a table.Query. Only known filterable and
// sortable column keys are accepted.
func listQuery[T any](f *listFlags, columns []table.Column[T]) (table.Query, error) {
	if f.page < 1 {
		return table.Query{}, fmt.Errorf("--page must be 1 or greater")
	}
	q := table.NewQuery(f.size)
	q.Page = f.page - 1

	ctrl := table.New(columns)
	if f.sort.Field != "" {
		col, ok := ctrl.Column(f.sort.Field)
		if !ok || !col.Sortable {
			return table.Query{}, fmt.Errorf("cannot sort by %q (sortable: %s)", f.sort.Field, strings.Join(columnKeys(columns, func(c table.Column[T]) bool { return c.Sortable }), ", "))
		}
		q.Sort = table.Sort{f.sort}
	}
	for _, raw := range f.filters {
		key, value, ok := strings.Cut(raw, "=")
		if !ok {
			return table.Query{}, fmt.Errorf("invalid filter %q: use column=value", raw)
		}
		key = strings.TrimSpace(key)
		col, found := ctrl.Column(key)
		if !found || !col.Filterable {
			return table.Query{}, fmt.Errorf("cannot filter by %q (filterable: %s)", key, strings.Join(columnKeys(columns, func(c table.Column[T]) bool { return c.Filterable }), ", "))
		}
		if err := checkFilterValue(col.FilterKind, value); err != nil {
			return table.Query{}, fmt.Errorf("filter %s: %w", key, err)
		}
		q.Filters[key] = strings.TrimSpace(value)
	}
	return q, nil
}

func checkFilterValue(kind table.FilterKind, value string) error {
	value = strings.TrimSpace(value)
	switch kind {
	case table.FilterNumber:
		return domain.Check("value", "omitempty,number")(value)
	case table.FilterDate:
		if value == "" {
			return nil
		}
		_, err := domain.ParseDate(value)
		return err
	}
	return nil
}

func columnKeys[T any](columns []table.Column[T], keep func(table.Column[T]) bool) []string {
	var keys []string
	for _, c := range columns {
		if keep(c) {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// printPage renders one page of records with sort markers and a footer.
func printPage[T any](w io.Writer, noun string, columns []table.Column[T], q table.Query, page *domain.Page[T]) {
	if page.Empty() {
		fmt.Fprintf(w, "No %s found.\n", noun)
		if page.TotalElements > 0 {
			fmt.Fprintln(w, formatter.Dim(formatter.PageFooter(api.PageInfo(page))))
		}
		return
	}
	ctrl := table.New(columns)
	ctrl.SyncSort(q.Sort)
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.HeaderText() + formatter.SortMark(ctrl.Indicator(c.Key))
	}
	fmt.Fprint(w, formatter.RenderTable(headers, ctrl.Rows(page.Content)))
	fmt.Fprintln(w, formatter.Dim(formatter.PageFooter(api.PageInfo(page))))
}

// listCommand builds a "list" style command over one paginated resource.
func listCommand[T any](app *App, use, short, noun string, columns []table.Column[T],
	fetch func(context.Context, table.Query) (*domain.Page[T], error)) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := listQuery(&flags, columns)
			if err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			var page *domain.Page[T]
			err = app.spin(cmd, "Loading "+noun+"...", func() error {
				page, err = fetch(ctx, q)
				return err
			})
			if err != nil {
				return err
			}
			printPage(cmd.OutOrStdout(), noun, columns, q, page)
			return nil
		},
	}
	flags.register(cmd, app.UI.PageSize)
	return cmd
}
