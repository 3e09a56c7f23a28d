package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/taskdesk/internal/cli/formatter"
	"github.com/alexanderramin/taskdesk/internal/domain"
	"github.com/alexanderramin/taskdesk/internal/service"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var in domain.LoginInput
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordStdin {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading password from stdin: %w", err)
				}
				in.Password = strings.TrimRight(line, "\r\n")
			}
			if (in.Username == "" || in.Password == "") && app.interactive() {
				if err := loginForm(&in).Run(); err != nil {
					return err
				}
			}
			if err := domain.Validate(in); err != nil {
				return err
			}

			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			var sess *domain.Session
			err := app.spin(cmd, "Signing in...", func() (err error) {
				sess, err = app.Sessions.Login(ctx, in)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", formatter.StyleGreen.Render(sess.Username))
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "Password (prompted when omitted on a terminal)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			if err := app.Sessions.Logout(ctx); err != nil {
				if errors.Is(err, service.ErrNotSignedIn) {
					fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
					return nil
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			u, err := app.Profile.Get(ctx)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatProfile(u))
			return nil
		},
	}
}

func formatProfile(u *domain.UserProfile) string {
	return formatter.FormatFields([][2]string{
		{"User", u.Username},
		{"Name", u.FullName},
		{"Email", u.Email},
		{"Roles", strings.Join(u.Roles, ", ")},
	})
}
