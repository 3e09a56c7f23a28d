package cli

import (
	"fmt"

	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/spf13/cobra"
)

func newAttachmentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "attachments",
		Aliases: []string{"files"},
		Short:   "Manage task attachments",
	}
	cmd.AddCommand(
		newAttachmentListCmd(app),
		newAttachmentUploadCmd(app),
		newAttachmentDownloadCmd(app),
		newAttachmentDeleteCmd(app),
	)
	return cmd
}

func newAttachmentListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <task-id>",
		Short: "List a task's attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			atts, err := app.API.Attachments.List(ctx, taskID)
			if err != nil {
				return err
			}
			if len(atts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No attachments.")
				return nil
			}
			cols := attachmentColumns()
			headers := make([]string, len(cols))
			for i, c := range cols {
				headers[i] = c.Title
			}
			rows := make([][]string, len(atts))
			for i, a := range atts {
				rows[i] = make([]string, len(cols))
				for j, c := range cols {
					rows[i][j] = c.Text(a)
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable(headers, rows))
			return nil
		},
	}
}

func newAttachmentUploadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <task-id> <file>",
		Short: "Upload a file to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			up := domain.AttachmentUpload{TaskID: taskID, Path: args[1]}
			if err := domain.Validate(up); err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			var att *domain.Attachment
			err = app.spin(cmd, "Uploading "+args[1]+"...", func() (err error) {
				att, err = app.API.Attachments.Upload(ctx, up)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%s) as attachment %d\n",
				att.FileName, formatter.FormatBytes(att.Size), att.ID)
			return nil
		},
	}
}

func newAttachmentDownloadCmd(app *App) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "download <task-id> <attachment-id>",
		Short: "Download an attachment into a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			attID, err := parseID(args[1])
			if err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			atts, err := app.API.Attachments.List(ctx, taskID)
			if err != nil {
				return err
			}
			att, ok := findAttachment(atts, attID)
			if !ok {
				return fmt.Errorf("attachment %d not found on task %d", attID, taskID)
			}
			var path string
			err = app.spin(cmd, "Downloading "+att.FileName+"...", func() (err error) {
				path, err = app.API.Attachments.DownloadTo(ctx, att, dir)
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

func findAttachment(atts []domain.Attachment, id int64) (domain.Attachment, bool) {
	for _, a := range atts {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Attachment{}, false
}

func newAttachmentDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <attachment-id>",
		Short: "Delete an attachment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ok, err := app.confirm(yes, fmt.Sprintf("Delete attachment %d?", id))
			if err != nil || !ok {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			if err := app.API.Attachments.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted attachment %d\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}
