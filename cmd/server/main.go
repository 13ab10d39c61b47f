package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docchunk/internal/api"
	"github.com/dgallion1/docchunk/internal/chunkstore"
	"github.com/dgallion1/docchunk/internal/config"
	"github.com/dgallion1/docchunk/internal/convert"
	"github.com/dgallion1/docchunk/internal/pipeline"
	"github.com/dgallion1/docchunk/internal/stats"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load configuration", "error", err)
		os.Exit(1)
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Optional chunk store.
	var store *chunkstore.Client
	if cfg.ChunkstoreEnabled() {
		store = chunkstore.NewClient(cfg.ChunkstoreURL, cfg.ChunkstoreAPIKey)
		defer store.Close()
	}

	rec := stats.NewRecorder(cfg.StatsWindow)
	conv := convert.NewService(cfg, rec, log)

	// The pool outlives the signal: serve stops it after HTTP has drained.
	orch := pipeline.NewOrchestrator(cfg, conv, store, log)
	orch.Start(context.Background())

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(orch, conv, rec, log, cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.ConversionTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		log.Error("listen", "addr", httpServer.Addr, "error", err)
		orch.Stop()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting docchunk",
		"port", cfg.Port,
		"workers", cfg.WorkerCount,
		"allowed_types", cfg.AllowedTypes,
		"chunkstore", cfg.ChunkstoreEnabled(),
		"auth", cfg.APIKey != "")
	if err := serve(ctx, httpServer, ln, orch, log, shutdownGrace); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

type stopper interface {
	Stop()
}

// serve runs srv on ln until ctx ends. It then drains in-flight requests,
// stops the worker pool and returns once both are done. Requests waiting on
// the pool keep their workers while HTTP drains; whatever is still queued
// after the grace period is failed by pool.Stop.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, pool stopper, log *slog.Logger, grace time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		pool.Stop()
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "error", err)
	}
	pool.Stop()

	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
