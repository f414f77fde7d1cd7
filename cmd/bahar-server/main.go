package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bahar-app/bahar/internal/api"
	"github.com/bahar-app/bahar/internal/config"
	"github.com/bahar-app/bahar/internal/logger"
	"github.com/bahar-app/bahar/internal/remote"
	"github.com/bahar-app/bahar/internal/repository/sqlite"
	"github.com/bahar-app/bahar/internal/scheduler"
	"github.com/bahar-app/bahar/internal/services"
	"github.com/bahar-app/bahar/internal/store"
	"github.com/bahar-app/bahar/internal/syncqueue"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Bahar Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("data_dir=%s", cfg.DataDir)
	log.Debug("remote_base_url=%s", cfg.RemoteBaseURL)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("sync_interval_seconds=%d", cfg.SyncIntervalSeconds)
	log.Debug("backlog_threshold_days=%d", cfg.BacklogThresholdDays)
	log.Debug("review_display_limit=%d", cfg.ReviewDisplayLimit)

	if cfg.UserID == "" {
		log.Error("USER_ID is required")
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Error("failed to create data directory: %v", err)
		os.Exit(1)
	}

	client := remote.New(cfg.RemoteBaseURL, cfg.AccessToken)

	manager := store.NewManager(func(ctx context.Context) (*store.Store, error) {
		return store.Open(ctx, client, store.Options{
			DataDir: cfg.DataDir,
			UserID:  cfg.UserID,
		})
	})
	defer func() {
		log.Debug("closing local replica")
		if err := manager.Close(); err != nil {
			log.Error("failed to close local replica: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancel()

	st, err := manager.Get(ctx)
	if err != nil {
		log.Error("failed to open local replica: %v", err)
		os.Exit(1)
	}

	if err := st.ApplyRequiredMigrations(ctx); err != nil {
		log.Error("failed to apply migrations: %v", err)
		os.Exit(1)
	}

	// Seed the replica before serving; a failed pull degrades to whatever is
	// already on disk.
	if err := st.Pull(ctx); err != nil {
		log.Warn("initial pull failed, serving local data: %v", err)
	}

	runner := syncqueue.New(st, time.Duration(cfg.SyncIntervalSeconds)*time.Second)
	runner.Start(ctx)

	entries := sqlite.NewEntryRepository(st.DB)
	cards := sqlite.NewFlashcardRepository(st.DB)
	decks := sqlite.NewDeckRepository(st.DB)
	settings := sqlite.NewSettingsRepository(st.DB)

	grader := scheduler.New()
	reviewCfg := services.ReviewConfig{
		BacklogThresholdDays: cfg.BacklogThresholdDays,
		DisplayLimit:         cfg.ReviewDisplayLimit,
	}

	srv := &api.Server{
		ReviewService:   services.NewReviewService(st, cards, settings, grader, reviewCfg, runner.Request),
		DeckService:     services.NewDeckService(decks, cards, settings, reviewCfg, runner.Request),
		EntryService:    services.NewEntryService(st, entries, cards, runner.Request),
		SettingsService: services.NewSettingsService(settings, runner.Request),
		SyncRunner:      runner,
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Flush pending reviews before exit; best effort.
	log.Debug("stopping sync worker")
	cancel()
	runner.Stop()
	if err := st.Push(shutdownCtx); err != nil {
		log.Warn("final push failed: %v", err)
	}

	log.Info("===========================================")
	log.Info("Bahar Server Stopped")
	log.Info("===========================================")
}
