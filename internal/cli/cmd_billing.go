package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/spf13/cobra"
)

func newBillingCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Manage monthly billing periods",
	}
	cmd.AddCommand(
		listCommand(app, "list", "List billing periods", "billing periods", billingColumns(), app.API.Billing.List),
		newBillingCreateCmd(app),
		newBillingTransitionCmd(app, "close", "Close a billing period", "Closed", app.API.Billing.Close),
		newBillingTransitionCmd(app, "reopen", "Reopen a closed billing period", "Reopened", app.API.Billing.Reopen),
		newBillingReportCmd(app),
	)
	return cmd
}

// parsePeriod reads "YYYY-MM".
func parsePeriod(s string) (year, month int, err error) {
	y, m, ok := strings.Cut(strings.TrimSpace(s), "-")
	if ok {
		year, err = strconv.Atoi(y)
		if err == nil {
			month, err = strconv.Atoi(m)
		}
	}
	if !ok || err != nil {
		return 0, 0, fmt.Errorf("invalid period %q: use YYYY-MM", s)
	}
	return year, month, nil
}

func newBillingCreateCmd(app *App) *cobra.Command {
	var projectID int64
	var period string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a billing period for a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := parsePeriod(period)
			if err != nil {
				return err
			}
			in := domain.BillingPeriodInput{ProjectID: projectID, Year: year, Month: month}
			if err := domain.Validate(in); err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			b, err := app.API.Billing.Create(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opened billing period %s for %s (id %d)\n",
				b.Label(), domain.Coalesce(b.ProjectName, strconv.FormatInt(b.ProjectID, 10)), b.ID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&projectID, "project", 0, "Project ID")
	cmd.Flags().StringVar(&period, "period", "", "Month as YYYY-MM")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}

func newBillingTransitionCmd(app *App, use, short, verb string,
	transition func(context.Context, int64) (*domain.BillingPeriod, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			b, err := transition(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s billing period %s %s\n", verb, b.Label(), formatter.BillingStatusPill(b.Status))
			return nil
		},
	}
}

func newBillingReportCmd(app *App) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "report <id>",
		Short: "Download a billing period's PDF report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			b, err := app.API.Billing.Get(ctx, id)
			if err != nil {
				return err
			}
			var path string
			err = app.spin(cmd, "Downloading report...", func() (err error) {
				path, err = app.API.Billing.ReportTo(ctx, *b, dir)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Target directory")
	return cmd
}
