package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/kodstechnologies/lm-backoffice/internal/api"
	"github.com/kodstechnologies/lm-backoffice/internal/config"
	"github.com/kodstechnologies/lm-backoffice/internal/db"
	"github.com/kodstechnologies/lm-backoffice/internal/logging"
	"github.com/kodstechnologies/lm-backoffice/internal/session"
	"github.com/kodstechnologies/lm-backoffice/internal/ui"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError(fmt.Sprintf("Invalid configuration: %v", err))
		os.Exit(1)
	}
	cfg.RegisterFlags(flag.CommandLine)
	noSplash := flag.Bool("no-splash", false, "Skip the splash screen")
	flag.Parse()

	logger, closer := logging.New(logging.Options{
		File:       cfg.LogFile,
		Level:      cfg.LogLevel,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	defer closer.Close()
	logger.Info("starting", "version", version, "api", cfg.APIURL)

	if !*noSplash {
		ui.ShowSplash(version, cfg.APIURL)
	}

	// An explicit --db or BACKOFFICE_DB bypasses the profile selector
	dbPath := cfg.DBPath
	if !dbChosen() {
		result, err := ui.RunProfileSelector(".")
		if err != nil {
			ui.PrintError(fmt.Sprintf("Profile selector failed: %v", err))
			os.Exit(1)
		}
		switch result.Action {
		case ui.ProfileExit:
			return
		case ui.ProfileCreate:
			ui.PrintSuccess(fmt.Sprintf("Creating new profile: %s", result.Path))
		default:
			ui.PrintInfo(fmt.Sprintf("Opening profile: %s", result.Path))
		}
		dbPath = result.Path
	}

	database, err := db.New(dbPath)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Failed to initialize database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	store, err := session.NewStore(
		session.WithPersister(database, cfg.Profile),
		session.WithLogger(logger.WithPrefix("session")),
	)
	if err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
	sessionLog := logger.WithPrefix("session")
	signedIn := store.Authenticated()
	unsubscribe := store.Subscribe(func(st session.State) {
		if st.Auth != signedIn {
			signedIn = st.Auth
			sessionLog.Info("auth changed", "signed_in", st.Auth, "email", st.Email)
		}
		sessionLog.Debug("state", "page", st.PageTitle, "theme", st.Theme)
	})
	defer unsubscribe()

	client := api.NewClient(cfg.APIURL,
		api.WithToken(store.Token),
		api.WithLogger(logger),
		api.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		api.WithTimeout(cfg.RequestTimeout),
		api.WithCache(cfg.CacheSize, cfg.CacheTTL),
	)

	app := &ui.App{
		Client:    client,
		DB:        database,
		Session:   store,
		Logger:    logger,
		PageSizes: cfg.PageSizes,
	}

	if err := run(app, logger); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}

// run is the main loop: login when needed, then the home screen and the
// page picked on it, until the user quits.
func run(app *ui.App, logger *log.Logger) error {
	cursor := 0
	for {
		if !app.Session.Authenticated() {
			res, err := ui.RunLogin(app.Client, app.Session)
			if err != nil {
				return err
			}
			if res.Cancelled {
				return nil
			}
			logger.Info("signed in", "email", res.Account.Email)
		}

		var home ui.HomeResult
		var err error
		home, cursor, err = ui.RunHome(app.Session.State(), func(ctx context.Context) (ui.DashboardStats, error) {
			return ui.LoadDashboard(ctx, app.Client)
		}, cursor)
		if err != nil {
			return err
		}

		switch home.Action {
		case ui.HomeQuit:
			return nil

		case ui.HomeLogout:
			if err := app.Session.Dispatch(session.ResetUser{}); err != nil {
				return err
			}
			logger.Info("signed out")

		case ui.HomeSettings:
			if err := app.RunSettings(); err != nil {
				logger.Error("settings failed", "err", err)
			}

		case ui.HomeOpenEntity:
			err := app.RunEntityBrowser(home.Entity)
			switch {
			case errors.Is(err, ui.ErrQuit):
				return nil
			case errors.Is(err, session.ErrUnauthorized):
				// the session was reset, the next pass shows the login
				logger.Warn("session expired", "err", err)
			case err != nil:
				logger.Error("page failed", "entity", home.Entity, "err", err)
			}
		}
	}
}

func dbChosen() bool {
	if os.Getenv("BACKOFFICE_DB") != "" {
		return true
	}
	chosen := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "db" {
			chosen = true
		}
	})
	return chosen
}
