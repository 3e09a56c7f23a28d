package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/alexanderramin/taskdesk/internal/api"
	"github.com/alexanderramin/taskdesk/internal/cli"
	"github.com/alexanderramin/taskdesk/internal/config"
	"github.com/alexanderramin/taskdesk/internal/db"
	"github.com/alexanderramin/taskdesk/internal/logger"
	"github.com/alexanderramin/taskdesk/internal/repository"
	"github.com/alexanderramin/taskdesk/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := cli.ErrorHint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

// profileTTL is how long the signed-in user's profile is reused.
const profileTTL = 5 * time.Minute

// requestTimeout bounds one user action across every retry of it.
func requestTimeout(c api.Config) time.Duration {
	attempts := time.Duration(c.MaxRetries + 1)
	return attempts*c.Timeout + attempts*attempts*c.Backoff
}

// configPath reads --config ahead of cobra, which needs the loaded
// configuration to build its commands.
func configPath(args []string) string {
	fs := pflag.NewFlagSet("taskdesk", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	path := fs.String("config", "", "")
	_ = fs.Parse(args)
	return *path
}

func run() error {
	cfg, err := config.Load(configPath(os.Args[1:]))
	if err != nil {
		return err
	}

	log, logFile, err := logger.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer logFile.Close()

	// Open the local store
	database, err := db.OpenDB(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	sessionRepo := repository.NewSQLiteSessionRepo(database)
	prefsRepo := repository.NewSQLitePrefsRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	// Wire the backend clients. Login and refresh go out without a token;
	// everything else carries one from the stored session.
	apiCfg := api.ConfigFrom(cfg.API)
	apiObserver := api.NewLogObserver(log)
	sessionObserver := service.NewLogSessionObserver(log)

	anon := api.New(api.NewClient(apiCfg, nil, apiObserver))
	tokens := service.NewTokenSource(sessionRepo, anon.Auth, sessionObserver)
	authed := api.New(api.NewClient(apiCfg, tokens, apiObserver))
	profile := api.NewProfileCache(authed.Profile.Me, profileTTL)

	app := &cli.App{
		API:            authed,
		Sessions:       service.NewSessionService(authed.Auth, sessionRepo, uow, tokens, profile, sessionObserver),
		Profile:        profile,
		Prefs:          prefsRepo,
		UI:             cfg.UI,
		Logger:         log,
		RequestTimeout: requestTimeout(apiCfg),
		HistoryPath:    filepath.Join(filepath.Dir(cfg.Store.Path), "history"),
	}

	// Detect interactive terminal for shell-only entrypoint.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
