package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/scriptcut/scriptcut-editor/internal/api"
	"github.com/scriptcut/scriptcut-editor/internal/autosave"
	"github.com/scriptcut/scriptcut-editor/internal/backend"
	"github.com/scriptcut/scriptcut-editor/internal/config"
	"github.com/scriptcut/scriptcut-editor/internal/db"
	"github.com/scriptcut/scriptcut-editor/internal/export"
	"github.com/scriptcut/scriptcut-editor/internal/logging"
	"github.com/scriptcut/scriptcut-editor/internal/playback"
	"github.com/scriptcut/scriptcut-editor/internal/session"
	"github.com/scriptcut/scriptcut-editor/internal/store"
	"github.com/scriptcut/scriptcut-editor/internal/ui"
)

var (
	serveProject  string
	serveOpen     string
	serveHeadless bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the editor engine and its local control API",
	Long: `Run the editor engine. The control API listens on 127.0.0.1 and
requires the bearer token printed at startup. Pass --project to open a
project immediately; --open translate translates it after loading.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveProject, "project", "", "Project id to open at startup")
	serveCmd.Flags().StringVar(&serveOpen, "open", "", "Entry option applied after loading (translate)")
	serveCmd.Flags().BoolVar(&serveHeadless, "headless", false, "Run without the system tray")
}

func serve() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting scriptcut editor",
		"version", config.Version,
		"data_dir", logging.SanitizePath(cfg.DataDir()),
		"offline", cfg.Offline(),
	)

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := store.NewRepository(database.Conn())

	authToken, err := api.EnsureAuthToken(context.Background(), repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Printf("║                  SCRIPTCUT EDITOR v%-22s ║\n", config.Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	var projects store.Backend = repo
	var ai backend.AI = backend.NewStubAI(logging.WithComponent(logger, "stub-ai"))
	if !cfg.Offline() {
		client := backend.NewHTTPClient(cfg.BackendURL(), cfg.BackendToken(), cfg.HTTPTimeout(), logging.WithComponent(logger, "backend"))
		projects, ai = client, client
		logger.Info("backend enabled",
			"base_url", cfg.BackendURL(),
			"token", logging.SanitizeToken(cfg.BackendToken()),
		)
	}

	var exporter *export.Exporter
	if cfg.Offline() {
		exporter = export.NewExporter(repo, filepath.Join(cfg.DataDir(), "exports"), logging.WithComponent(logger, "export"))
		ai = export.WithLocalExport(ai, exporter)
	}

	sess := session.New(store.New(projects, logging.WithComponent(logger, "store")), ai, logging.WithComponent(logger, "session"))
	if exporter != nil {
		exporter.SetDuration(func() float64 {
			if pb := sess.Snapshot().Playback; pb != nil {
				return pb.Duration
			}
			return 0
		})
	}
	inbox := api.NewInbox()
	sess.SetNotifier(inbox)

	saver := autosave.New(sess, cfg.AutosaveInterval(), logging.WithComponent(logger, "autosave"))
	sess.SetPersister(saver)

	driver := playback.NewDriver(playback.TickerFunc(sess.Tick), logging.WithComponent(logger, "playback"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		driver.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		saver.Start(ctx)
	}()

	if serveProject != "" {
		out, err := sess.Load(ctx, serveProject, session.LoadOptions{AutoTranslate: serveOpen == "translate"})
		if err != nil {
			logger.Warn("failed to open startup project", "project_id", serveProject, "error", err)
		}
		for _, e := range out.Effects {
			inbox.Notify(serveProject, e)
		}
	}

	apiServer := api.NewServer(api.ServerConfig{
		Port:           cfg.Port(),
		Editor:         sess,
		ConfigStore:    repo,
		Inbox:          inbox,
		Media:          playback.NewMediaServer(logging.WithComponent(logger, "media")),
		AllowedOrigins: cfg.AllowedOrigins(),
		Offline:        cfg.Offline(),
		Logger:         logging.WithComponent(logger, "api"),
		StartTime:      startTime,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})
	var quitOnce sync.Once
	quit := func() { quitOnce.Do(func() { close(quitCh) }) }

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			quit()
		case <-quitCh:
		}
	}()

	var tray *ui.Tray
	if cfg.Headless() || serveHeadless {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray = ui.NewTray(ui.TrayConfig{
			Editor:   sess,
			Autosave: saver,
			Logger:   logging.WithComponent(logger, "tray"),
			OnQuit:   quit,
		})
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	// Cancelling stops the tick loops; the scheduler flushes pending edits
	// before returning, so wait for it before the database closes.
	cancel()
	wg.Wait()

	if tray != nil {
		tray.Quit()
	}

	stats := saver.Stats()
	logger.Info("shutdown complete", "saves", stats.Saves, "save_failures", stats.Failures)
	return nil
}
