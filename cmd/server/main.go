package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/nicktill/promcheck/pkg/config"
	"github.com/nicktill/promcheck/pkg/logging"
	"github.com/nicktill/promcheck/pkg/server"
	"github.com/nicktill/promcheck/pkg/server/monitor"
	"github.com/nicktill/promcheck/pkg/watch"
)

const (
	serverReadTimeout  = 10 * time.Second
	serverWriteTimeout = 30 * time.Second
)

func main() {
	cfg := server.LoadConfig()
	logger := logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg server.Config, logger *slog.Logger) error {
	logger.Info("starting promcheck server",
		"data_dir", cfg.DataDir,
		"store_dir", cfg.StoreDir,
		"pattern", cfg.Pattern,
		"workers", cfg.Workers,
		"max_storage_gb", cfg.MaxStorageGB,
	)

	if err := server.EnsureDirs(cfg); err != nil {
		return err
	}

	store, err := server.InitializeStorage(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	diskMonitor := monitor.NewDiskMonitor(cfg.StoreDir, cfg.MaxStorageBytes())
	handlers := server.InitializeHandlers(cfg, store, diskMonitor, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		handlers.Hub.Run(ctx)
	}()

	var tasks []*monitor.TaskMonitor
	if cfg.Retention > 0 {
		retention := server.NewRetention(store, cfg.Retention, config.RetentionInterval, logger)
		tasks = append(tasks, retention.Monitor)
		wg.Add(1)
		go retention.Run(ctx, &wg)
	} else {
		logger.Warn("report retention disabled, reports are kept forever")
	}

	wg.Add(1)
	go server.RunBadgerGC(ctx, store, config.BadgerGCInterval, config.BadgerGCDiscardRatio, logger, &wg)

	if cfg.Watch {
		watcher, err := watch.New(cfg.DataDir, cfg.Pattern, config.WatchDebounce, logger)
		if err != nil {
			return err
		}
		wg.Add(1)
		go server.RunWatcher(ctx, watcher, handlers.API, logger, &wg)
	}

	router := mux.NewRouter()
	server.SetupRoutes(router, handlers, diskMonitor, tasks, cfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", "http://localhost:"+cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serveErr:
		if err != nil {
			cancel()
			wg.Wait()
			return err
		}
	}

	// Background tasks must see cancellation before wg.Wait or shutdown deadlocks
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown incomplete", "error", err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("background tasks stopped")
	case <-time.After(5 * time.Second):
		logger.Warn("some background tasks did not stop in time")
	}

	logger.Info("promcheck server exited")
	return nil
}
