package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/spf13/cobra"
)

func newItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "Manage delivery items",
	}
	cmd.AddCommand(
		newItemListCmd(app),
		newItemAddCmd(app),
		newItemPatchCmd(app, "status <item-id> <status>", "Set an item's status", func(args []string) (domain.ItemPatch, error) {
			s := domain.ItemStatus(strings.ToUpper(args[1]))
			if !s.Valid() {
				return domain.ItemPatch{}, fmt.Errorf("unknown item status %q", args[1])
			}
			return domain.ItemPatch{Status: &s}, nil
		}),
		newItemPatchCmd(app, "branch <item-id> <branch>", "Set a development item's branch", func(args []string) (domain.ItemPatch, error) {
			b := strings.TrimSpace(args[1])
			return domain.ItemPatch{Branch: &b}, nil
		}),
		newItemPatchCmd(app, "pr <item-id> <url>", "Set a development item's pull request", func(args []string) (domain.ItemPatch, error) {
			u := strings.TrimSpace(args[1])
			return domain.ItemPatch{PullRequestURL: &u}, nil
		}),
		newItemPatchCmd(app, "note <item-id> <text>", "Replace an item's notes", func(args []string) (domain.ItemPatch, error) {
			n := strings.Join(args[1:], " ")
			return domain.ItemPatch{Notes: &n}, nil
		}),
	)
	return cmd
}

func newItemListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <delivery-id>",
		Short: "List the items of a delivery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			items, err := app.API.DeliveryItems.List(ctx, id)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(w, "No items.")
				return nil
			}
			cols := itemColumns()
			headers := make([]string, len(cols))
			for i, c := range cols {
				headers[i] = c.Title
			}
			rows := make([][]string, len(items))
			for i, it := range items {
				rows[i] = make([]string, len(cols))
				for j, c := range cols {
					rows[i][j] = c.Text(it)
				}
			}
			fmt.Fprint(w, formatter.RenderTable(headers, rows))
			fmt.Fprintln(w, formatter.RenderProgress(doneItems(items), len(items), 20))
			return nil
		},
	}
}

func newItemAddCmd(app *App) *cobra.Command {
	var title, notes, ops, dev string

	cmd := &cobra.Command{
		Use:   "add <delivery-id>",
		Short: "Add an item to a delivery",
		Long: `Add one item to a delivery. Give exactly one of
  --ops "procedure|environment"
  --dev "repository|branch|pull request URL"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if (ops == "") == (dev == "") {
				return fmt.Errorf("give exactly one of --ops or --dev")
			}
			var in domain.DeliveryItemInput
			if ops != "" {
				in = parseOpsItem(title + "|" + ops)
			} else {
				in = parseDevItem(title + "|" + dev)
			}
			in.Notes = notes
			if err := domain.Validate(in); err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			item, err := app.API.DeliveryItems.Create(ctx, id, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s item #%d to delivery #%d\n", formatter.FlowBadge(item.Kind()), item.ID, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Item title")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	cmd.Flags().StringVar(&ops, "ops", "", "Operational fields")
	cmd.Flags().StringVar(&dev, "dev", "", "Development fields")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

// newItemPatchCmd builds one of the single-field item update commands.
func newItemPatchCmd(app *App, use, short string, build func(args []string) (domain.ItemPatch, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := build(args)
			if err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			item, err := app.API.DeliveryItems.Patch(ctx, id, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated item #%d %s\n", item.ID, formatter.ItemStatusPill(item.Status))
			return nil
		},
	}
}
