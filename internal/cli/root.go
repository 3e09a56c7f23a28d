package cli

import (
	"log/slog"
	"time"

	"github.com/alexanderramin/taskdesk/internal/api"
	"github.com/alexanderramin/taskdesk/internal/config"
	"github.com/alexanderramin/taskdesk/internal/repository"
	"github.com/alexanderramin/taskdesk/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// App holds everything CLI commands and TUI views reach for.
type App struct {
	API      *api.API
	Sessions service.SessionService
	Profile  *api.ProfileCache
	Prefs    repository.PrefsRepo
	UI       config.UIConfig
	Logger   *slog.Logger

	// RequestTimeout caps one user action, retries included.
	RequestTimeout time.Duration

	// HistoryPath persists command-bar history; empty keeps it in memory.
	HistoryPath string

	// IsInteractive reports whether stdin is a terminal. Nil means no.
	IsInteractive func() bool

	// RunProgram starts the TUI; tests swap it out.
	RunProgram func(m tea.Model) error
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

// NewRootCmd creates the top-level "taskdesk" command and registers all
// subcommands against the provided App. Without arguments it starts the
// TUI on a terminal and prints help otherwise.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskdesk",
		Short:         "Terminal client for tasks, deliveries and billing",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return cmd.Help()
			}
			return runTUI(app)
		},
	}
	// Parsed ahead of cobra in main so the config can shape the App.
	root.PersistentFlags().String("config", "", "config file (default ~/.taskdesk/config.yaml)")

	root.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newTasksCmd(app),
		newAttachmentsCmd(app),
		newDeliveriesCmd(app),
		newItemsCmd(app),
		newBillingCmd(app),
		newCatalogCmd(app, "projects", "List projects", projectColumns(), app.API.Projects.List),
		newCatalogCmd(app, "quotes", "List quotes", quoteColumns(), app.API.Quotes.List),
		newCatalogCmd(app, "requesters", "List requesters", requesterColumns(), app.API.Requesters.List),
		newTUICmd(app),
	)

	return root
}

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(app)
		},
	}
}

func runTUI(app *App) error {
	m := newAppModel(app)
	if app.RunProgram != nil {
		return app.RunProgram(m)
	}
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
