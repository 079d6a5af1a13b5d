package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zervos/desk/internal/app"
	"github.com/zervos/desk/internal/bus"
	"github.com/zervos/desk/internal/cue"
	"github.com/zervos/desk/internal/invoice"
	"github.com/zervos/desk/internal/logging"
	"github.com/zervos/desk/internal/mailer"
	"github.com/zervos/desk/internal/model"
	"github.com/zervos/desk/internal/notify"
	"github.com/zervos/desk/internal/store"
	"github.com/zervos/desk/internal/team"
	"github.com/zervos/desk/internal/workspace"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "zervos: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Storage.LogPath)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	kv, err := store.NewSQLiteStore(cfg.Storage.Path, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer kv.Close()

	b := bus.New(logger)

	pollInterval := time.Duration(cfg.Popup.PollIntervalMS) * time.Millisecond
	watcher := store.NewWatcher(kv, b, pollInterval, logger)
	watcher.Start()

	notes := notify.NewStore(kv, b, logger)

	chime := cue.New(cfg.Popup.SoundAsset, logger)
	popups := notify.NewController(
		notes, b, chime,
		cfg.Popup.MaxVisible,
		time.Duration(cfg.Popup.DurationMS)*time.Millisecond,
		logger,
	)

	manager := workspace.NewManager(kv, b, logger)

	smtp := mailer.NewSMTP(cfg.Mail, logger)
	invoices := invoice.NewService(kv, notes, smtp, logger)
	members := team.NewService(kv, b, logger)

	m := app.New(app.Deps{
		Bus:       b,
		Notes:     notes,
		Popups:    popups,
		Workspace: manager,
		Invoices:  invoices,
		Team:      members,
		Watcher:   watcher,
		Config:    cfg,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}

	return nil
}
