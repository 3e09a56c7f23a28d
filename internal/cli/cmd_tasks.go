package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Manage tasks",
	}

	cmd.AddCommand(
		listCommand(app, "list", "List tasks", "tasks", taskColumns(), app.API.Tasks.List),
		newTaskShowCmd(app),
		newTaskCreateCmd(app),
		newTaskUpdateCmd(app),
		newTaskStatusCmd(app),
		newTaskDeleteCmd(app),
	)
	return cmd
}

func newTaskShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			t, err := app.API.Tasks.Get(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatTask(t))
			return nil
		},
	}
}

func formatTask(t *domain.Task) string {
	quote := ""
	if t.QuoteID != nil {
		quote = "#" + strconv.FormatInt(*t.QuoteID, 10)
	}
	var b strings.Builder
	b.WriteString(formatter.Header(t.DisplayID()+"  "+t.Title) + "\n")
	b.WriteString(formatter.FormatFields([][2]string{
		{"Status", formatter.TaskStatusPill(t.Status)},
		{"Priority", formatter.PriorityBadge(t.Priority)},
		{"Flow", formatter.FlowBadge(t.FlowType)},
		{"Project", t.ProjectName},
		{"Requester", t.RequesterName},
		{"Quote", quote},
		{"Due", formatter.DueDate(t.DueDate, t.Status)},
		{"Link", t.Link},
		{"Files", strconv.Itoa(t.AttachmentCount)},
		{"Updated", formatter.HumanTimestamp(t.UpdatedAt)},
	}))
	if t.Description != "" {
		b.WriteString("\n" + t.Description + "\n")
	}
	return b.String()
}

// taskFlags binds the editable task fields to flags.
type taskFlags struct {
	title, description, priority, flow, link, due string
	project, requester, quote                     int64
}

func (f *taskFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "Task title")
	fs.StringVar(&f.description, "description", "", "Description")
	fs.StringVar(&f.priority, "priority", string(domain.PriorityMedium), "LOW, MEDIUM, HIGH or URGENT")
	fs.StringVar(&f.flow, "flow", "", "OPERATIONAL or DEVELOPMENT")
	fs.Int64Var(&f.project, "project", 0, "Project ID")
	fs.Int64Var(&f.requester, "requester", 0, "Requester ID")
	fs.Int64Var(&f.quote, "quote", 0, "Quote ID (0 for none)")
	fs.StringVar(&f.link, "link", "", "External link")
	fs.StringVar(&f.due, "due", "", "Due date (YYYY-MM-DD, empty to clear)")
}

// apply copies the flags the user set onto in.
func (f *taskFlags) apply(fs *pflag.FlagSet, in *domain.TaskInput) error {
	if fs.Changed("title") {
		in.Title = strings.TrimSpace(f.title)
	}
	if fs.Changed("description") {
		in.Description = f.description
	}
	if fs.Changed("priority") || in.Priority == "" {
		in.Priority = domain.Priority(strings.ToUpper(f.priority))
	}
	if fs.Changed("flow") {
		in.FlowType = domain.FlowType(strings.ToUpper(f.flow))
	}
	if fs.Changed("project") {
		in.ProjectID = f.project
	}
	if fs.Changed("requester") {
		in.RequesterID = f.requester
	}
	if fs.Changed("quote") {
		in.QuoteID = nil
		if f.quote > 0 {
			q := f.quote
			in.QuoteID = &q
		}
	}
	if fs.Changed("link") {
		in.Link = strings.TrimSpace(f.link)
	}
	if fs.Changed("due") {
		d, err := domain.ParseOptionalDate(strings.TrimSpace(f.due))
		if err != nil {
			return err
		}
		in.DueDate = d
	}
	return nil
}

func newTaskCreateCmd(app *App) *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in domain.TaskInput
			if err := flags.apply(cmd.Flags(), &in); err != nil {
				return err
			}
			if err := domain.Validate(in); err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			t, err := app.API.Tasks.Create(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s %s\n", t.DisplayID(), formatter.Dim("(id "+strconv.FormatInt(t.ID, 10)+")"))
			return nil
		},
	}
	flags.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("flow")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("requester")
	return cmd
}

func newTaskUpdateCmd(app *App) *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			current, err := app.API.Tasks.Get(ctx, id)
			if err != nil {
				return err
			}
			in := domain.InputFromTask(current)
			if err := flags.apply(cmd.Flags(), &in); err != nil {
				return err
			}
			if err := domain.Validate(in); err != nil {
				return err
			}
			t, err := app.API.Tasks.Update(ctx, id, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", t.DisplayID())
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newTaskStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move a task to OPEN, IN_PROGRESS, DONE or CANCELLED",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status := domain.TaskStatus(strings.ToUpper(args[1]))
			if !status.Valid() {
				return fmt.Errorf("unknown task status %q", args[1])
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			t, err := app.API.Tasks.ChangeStatus(ctx, id, status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", t.DisplayID(), formatter.TaskStatusPill(t.Status))
			return nil
		},
	}
}

func newTaskDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ok, err := app.confirm(yes, fmt.Sprintf("Delete task %d?", id))
			if err != nil || !ok {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			if err := app.API.Tasks.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

// confirm asks on a terminal unless yes is set. Without a terminal the
// caller must pass --yes.
func (a *App) confirm(yes bool, question string) (bool, error) {
	if yes {
		return true, nil
	}
	if !a.interactive() {
		return false, fmt.Errorf("refusing to continue without --yes")
	}
	var ok bool
	err := wizardConfirm(question, "", &ok).Run()
	return ok, err
}
