package main

import (
	"context"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calendar-api/internal/config"
	"calendar-api/internal/server"
	"calendar-api/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("service=backend msg=%q err=%v", "invalid_config", err)
		os.Exit(1)
	}

	logger, err := server.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Printf("service=backend msg=%q err=%v", "logger_init_failed", err)
		os.Exit(1)
	}
	server.SetLogger(logger)
	defer func() { _ = logger.Sync() }()

	build := server.BuildInfo{
		Version: cfg.Version,
		Commit:  cfg.Commit,
	}

	// Database
	log.Printf("service=backend msg=%q uri=%s db=%s", "connecting_store", redactURI(cfg.StoreURI), cfg.Database)
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := store.Open(connectCtx, cfg.StoreURI, cfg.Database)
	cancelConnect()
	if err != nil {
		log.Printf("service=backend msg=%q err=%v", "db_connect_failed", err)
		os.Exit(1)
	}
	log.Printf("service=backend msg=%q", "store_connected")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Close(ctx)
	}()

	// Optional snapshot export to object storage
	var snapshots *server.SnapshotManager
	if cfg.Snapshot.Enabled {
		snapCtx, cancelSnap := context.WithTimeout(context.Background(), 10*time.Second)
		snapshots, err = server.NewSnapshotManager(snapCtx, cfg.Snapshot, db, build.Version)
		cancelSnap()
		if err != nil {
			// Snapshots are optional; the API keeps serving without them.
			log.Printf("service=backend msg=%q err=%v", "snapshots_disabled", err)
		} else {
			snapshots.Start()
			defer snapshots.Stop()
		}
	}

	srv := server.New(server.Config{
		Addr:      cfg.Addr(),
		Build:     build,
		Store:     db,
		Snapshots: snapshots,
	})

	// Start the HTTP server in a background goroutine.
	// This allows us to listen for OS signals while the server runs.
	errCh := make(chan error, 1)
	go func() {
		log.Printf("service=backend msg=%q addr=%s env=%s version=%s commit=%s",
			"starting", cfg.Addr(), cfg.Env, build.Version, build.Commit)
		errCh <- srv.Start()
	}()

	// Set up signal handling for graceful shutdown on SIGINT (Ctrl+C) or SIGTERM (container stop).
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Block until either a shutdown signal is received or the server encounters an error.
	select {
	case sig := <-sigCh:
		log.Printf("service=backend msg=%q signal=%s", "shutting_down", sig.String())
		// Give the server 5 seconds to finish in-flight requests.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("service=backend msg=%q err=%v", "shutdown_error", err)
			os.Exit(1)
		}
		log.Printf("service=backend msg=%q", "shutdown_complete")
	case err := <-errCh:
		if err != nil {
			log.Printf("service=backend msg=%q err=%v", "server_error", err)
			os.Exit(1)
		}
	}
}

// redactURI hides the password of a connection URI for logging.
func redactURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable>"
	}
	return u.Redacted()
}
