package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alexanderramin/taskdesk/internal/api"
	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/spf13/cobra"
)

func newDeliveriesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deliveries",
		Aliases: []string{"delivery"},
		Short:   "Manage deliveries",
	}
	cmd.AddCommand(
		newDeliveryListCmd(app),
		newDeliveryShowCmd(app),
		newDeliveryCreateCmd(app),
		newDeliveryStatusCmd(app),
	)
	return cmd
}

func newDeliveryListCmd(app *App) *cobra.Command {
	var flags listFlags
	columns := deliveryGroupColumns()

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deliveries grouped by task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := listQuery(&flags, columns)
			if err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			var page *domain.Page[domain.DeliveryGroup]
			err = app.spin(cmd, "Loading deliveries...", func() (err error) {
				page, err = app.API.Deliveries.ListGrouped(ctx, q)
				return err
			})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if page.Empty() {
				fmt.Fprintln(w, "No deliveries found.")
				return nil
			}
			fmt.Fprint(w, deliveryTree(page.Content))
			fmt.Fprintln(w, formatter.Dim(formatter.PageFooter(api.PageInfo(page))))
			return nil
		},
	}
	flags.register(cmd, app.UI.PageSize)
	return cmd
}

// deliveryTree renders each group's task with every delivery listed under
// it, followed by a warning when the count and the list disagree.
func deliveryTree(groups []domain.DeliveryGroup) string {
	var items []formatter.TreeItem
	var warnings []string
	for _, g := range groups {
		items = append(items, formatter.TreeItem{
			Title:  g.Task.Title,
			Ref:    g.Task.Code,
			Status: string(g.Task.Status),
			Detail: deliveryCountLabel(g.TotalDeliveries),
		})
		for i, d := range g.Deliveries {
			items = append(items, formatter.TreeItem{
				Title:  d.Title,
				Ref:    "#" + strconv.FormatInt(d.ID, 10),
				Level:  1,
				IsLast: i == len(g.Deliveries)-1,
				Status: string(d.Status),
				Detail: itemCountLabel(d.ItemCount),
			})
		}
		if g.Mismatch() {
			warnings = append(warnings, mismatchWarning(g))
		}
	}
	out := formatter.RenderTree(items)
	for _, w := range warnings {
		out += w + "\n"
	}
	return out
}

func mismatchWarning(g domain.DeliveryGroup) string {
	return formatter.StyleYellow.Render(fmt.Sprintf("⚠ %s: backend reports %d deliveries, %d listed",
		g.Task.Code, g.TotalDeliveries, len(g.Deliveries)))
}

func deliveryCountLabel(n int) string {
	if n == 1 {
		return "1 delivery"
	}
	return strconv.Itoa(n) + " deliveries"
}

func itemCountLabel(n int) string {
	if n == 1 {
		return "1 item"
	}
	return strconv.Itoa(n) + " items"
}

func newDeliveryShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a delivery and its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			d, err := app.API.Deliveries.Get(ctx, id)
			if err != nil {
				return err
			}
			items := d.Items
			if len(items) == 0 && d.ItemCount > 0 {
				if items, err = app.API.DeliveryItems.List(ctx, id); err != nil {
					return err
				}
			}
			printDelivery(cmd.OutOrStdout(), d, items)
			return nil
		},
	}
}

func printDelivery(w io.Writer, d *domain.Delivery, items []domain.DeliveryItem) {
	fmt.Fprintln(w, formatter.Header(fmt.Sprintf("Delivery #%d  %s", d.ID, d.Title)))
	delivered := ""
	if d.DeliveredAt != nil {
		delivered = d.DeliveredAt.String()
	}
	fmt.Fprint(w, formatter.FormatFields([][2]string{
		{"Task", strings.TrimSpace(d.TaskCode + " " + d.TaskTitle)},
		{"Status", formatter.DeliveryStatusPill(d.Status)},
		{"Delivered", delivered},
		{"Notes", d.Notes},
	}))
	fmt.Fprintln(w)
	if len(items) == 0 {
		fmt.Fprintln(w, formatter.Dim("  No items."))
		return
	}
	fmt.Fprintln(w, "  "+formatter.RenderProgress(doneItems(items), len(items), 20))
	for _, it := range items {
		fmt.Fprint(w, itemBlock(it))
	}
}

func doneItems(items []domain.DeliveryItem) int {
	n := 0
	for _, it := range items {
		if it.Status == domain.ItemDone {
			n++
		}
	}
	return n
}

// itemBlock renders one item with the fields of its kind.
func itemBlock(it domain.DeliveryItem) string {
	head := fmt.Sprintf("\n  %s %s  %s  %s\n",
		formatter.Dim("#"+strconv.FormatInt(it.ID, 10)),
		formatter.FlowBadge(it.Kind()),
		formatter.Bold(it.Title),
		formatter.ItemStatusPill(it.Status))
	fields := itemFields(it)
	if len(fields) == 0 {
		return head
	}
	return head + indent(formatter.FormatFields(fields), "  ")
}

// itemFields lists the kind-specific fields of an item, then its notes.
func itemFields(it domain.DeliveryItem) [][2]string {
	var fields [][2]string
	if it.Detail != nil {
		fields = domain.VisitItem[[][2]string](it.Detail, domain.ItemFuncs[[][2]string]{
			OnOperational: func(o domain.OperationalItem) [][2]string {
				executed := ""
				if o.ExecutedAt != nil {
					executed = o.ExecutedAt.String()
				}
				return [][2]string{
					{"Procedure", o.Procedure},
					{"Environment", o.Environment},
					{"Executed", executed},
				}
			},
			OnDevelopment: func(dv domain.DevelopmentItem) [][2]string {
				return [][2]string{
					{"Repository", dv.Repository},
					{"Branch", dv.Branch},
					{"Pull request", dv.PullRequestURL},
					{"Version", dv.Version},
				}
			},
		})
	}
	if it.Detail == nil {
		fields = append(fields, [2]string{"Kind", "unknown kind " + strconv.Quote(string(it.UnknownFlow))})
	}
	if it.Notes != "" {
		fields = append(fields, [2]string{"Notes", it.Notes})
	}
	return fields
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n") + "\n"
}

func newDeliveryCreateCmd(app *App) *cobra.Command {
	var (
		taskID   int64
		title    string
		notes    string
		opsSpecs []string
		devSpecs []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a delivery with its items",
		Long: `Create a delivery for a task.

Items are given as pipe-separated fields:
  --ops "title|procedure|environment"
  --dev "title|repository|branch|pull request URL"
Trailing fields may be left out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := domain.DeliveryInput{TaskID: taskID, Title: strings.TrimSpace(title), Notes: notes}
			for _, s := range opsSpecs {
				in.Items = append(in.Items, parseOpsItem(s))
			}
			for _, s := range devSpecs {
				in.Items = append(in.Items, parseDevItem(s))
			}
			if err := domain.Validate(in); err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			d, err := app.API.Deliveries.Create(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created delivery #%d with %s\n", d.ID, itemCountLabel(len(in.Items)))
			return nil
		},
	}
	cmd.Flags().Int64Var(&taskID, "task", 0, "Task ID")
	cmd.Flags().StringVar(&title, "title", "", "Delivery title")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	cmd.Flags().StringArrayVar(&opsSpecs, "ops", nil, "Operational item (repeatable)")
	cmd.Flags().StringArrayVar(&devSpecs, "dev", nil, "Development item (repeatable)")
	_ = cmd.MarkFlagRequired("task")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func splitFields(spec string, n int) []string {
	parts := strings.SplitN(spec, "|", n)
	for len(parts) < n {
		parts = append(parts, "")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseOpsItem(spec string) domain.DeliveryItemInput {
	f := splitFields(spec, 3)
	return domain.DeliveryItemInput{
		Title:  f[0],
		Detail: domain.OperationalItem{Procedure: f[1], Environment: f[2]},
	}
}

func parseDevItem(spec string) domain.DeliveryItemInput {
	f := splitFields(spec, 4)
	return domain.DeliveryItemInput{
		Title:  f[0],
		Detail: domain.DevelopmentItem{Repository: f[1], Branch: f[2], PullRequestURL: f[3]},
	}
}

func newDeliveryStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Set a delivery's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status := domain.DeliveryStatus(strings.ToUpper(args[1]))
			if !status.Valid() {
				return fmt.Errorf("unknown delivery status %q", args[1])
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			d, err := app.API.Deliveries.UpdateStatus(ctx, id, status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Delivery #%d is now %s\n", d.ID, formatter.DeliveryStatusPill(d.Status))
			return nil
		},
	}
}
