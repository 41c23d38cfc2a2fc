package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/soyeahso/agentchat/internal/backend"
	"github.com/soyeahso/agentchat/internal/config"
	"github.com/soyeahso/agentchat/internal/hooks"
	"github.com/soyeahso/agentchat/internal/logging"
	"github.com/soyeahso/agentchat/internal/store"
	"github.com/soyeahso/agentchat/internal/terminal"
	"github.com/soyeahso/agentchat/internal/widget"
)

// storageNamespace scopes the widget's keys in the local_storage table.
const storageNamespace = "widget"

// hookDrainTimeout bounds how long Close waits for async hooks.
const hookDrainTimeout = 5 * time.Second

// app holds everything a command needs to drive a widget.
type app struct {
	cfg     config.Config
	log     *logging.Logger
	client  *backend.Client
	hooks   *hooks.Manager
	storage widget.Storage
	catalog *widget.Catalog

	db        *store.DB
	logCloser io.Closer
}

// openApp loads and validates the config, then builds the logger, backend
// client, hook manager and storage. interactive sends console logs to a
// file so they do not interleave with the chat.
func openApp(interactive bool) (*app, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, err
	}
	if backendURL != "" {
		cfg.Backend.BaseURL = backendURL
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if issues := config.Validate(&cfg); len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return nil, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}

	logOpts := logging.Options{
		Level: cfg.Logging.Level,
		Style: cfg.Logging.ConsoleStyle,
		File:  cfg.Logging.File,
	}
	if interactive {
		logOpts.NoConsole = true
		if logOpts.File == "" {
			logOpts.File = filepath.Join(paths.Logs, "agentchat.log")
		}
	}
	appLog, closer, err := logging.Open(logOpts)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		log:       appLog,
		catalog:   widget.CatalogFor(cfg.UI.Locale),
		logCloser: closer,
	}

	a.hooks = hooks.NewManager(appLog)
	if n := hooks.RegisterConfig(a.hooks, cfg.Hooks); n > 0 {
		appLog.Debug().Int("hooks", n).Msg("hooks registered")
	}

	opts := []backend.Option{
		backend.WithLogger(appLog),
		backend.WithTimeout(time.Duration(cfg.Backend.TimeoutSeconds) * time.Second),
	}
	if len(cfg.Backend.Headers) > 0 {
		opts = append(opts, backend.WithHeaders(cfg.Backend.Headers))
	}
	a.client = backend.New(cfg.Backend.BaseURL, opts...)

	if err := a.openStorage(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) openStorage() error {
	if a.cfg.Storage.Store != "sqlite" {
		a.storage = store.NewMemoryKV(nil)
		a.log.Debug().Msg("using in-memory storage")
		return nil
	}

	dbPath := a.cfg.Storage.Path
	if dbPath == "" {
		dbPath = paths.Database
	}
	db, err := store.Open(dbPath, a.log)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.db = db
	a.storage = store.NewSQLiteKV(db, storageNamespace)
	a.log.Debug().Str("path", dbPath).Msg("using SQLite storage")
	return nil
}

// newWidget creates a widget that renders to view.
func (a *app) newWidget(view widget.View) (*widget.Widget, error) {
	return widget.New(widget.Options{
		API:         a.client,
		View:        view,
		Storage:     a.storage,
		Hooks:       a.hooks,
		Logger:      a.log,
		Catalog:     a.catalog,
		ScrollDelay: time.Duration(a.cfg.UI.ScrollDelayMs) * time.Millisecond,
	})
}

// printWidget creates a widget whose view prints plain lines to out.
func (a *app) printWidget(out io.Writer) (*widget.Widget, *terminal.View, error) {
	view := terminal.NewView(out, terminal.Options{Catalog: a.catalog})
	w, err := a.newWidget(view)
	return w, view, err
}

// Close waits for pending hooks and releases the database and log file.
func (a *app) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), hookDrainTimeout)
	defer cancel()
	if err := a.hooks.Wait(ctx); err != nil {
		a.log.Warn().Err(err).Msg("hooks still running at exit")
	}

	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
	}
	return errors.Join(errs...)
}
