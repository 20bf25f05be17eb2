package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/graphboard/internal/api"
	"github.com/gyaneshwarpardhi/graphboard/internal/config"
	"github.com/gyaneshwarpardhi/graphboard/internal/engine"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	var (
		addr    string
		cfgPath string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve boards over HTTP and WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.setupLogging(os.Stdout); err != nil {
				return err
			}
			return serve(addr, cfgPath)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	cmd.Flags().StringVar(&cfgPath, "config", "configs/board.yaml", "Path to board YAML config (empty for defaults)")
	return cmd
}

func serve(addr, cfgPath string) error {
	// ── Load config ──────────────────────────────────────────────────────────
	loader, cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	// ── Engine ────────────────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.New(ctx, cfg, newRegistry())
	slog.Info("engine started",
		"shards", cfg.Engine.Shards,
		"queue_depth", cfg.Engine.QueueDepth,
		"backends", cfg.Canvas.Backends)

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	if loader != nil {
		loader.OnChange(func(newCfg *config.BoardConfig) {
			eng.SwapConfig(newCfg)
			slog.Info("board config hot-reloaded", "version", newCfg.Version, "path", loader.Path())
		})
		stopWatch, err := loader.Watch()
		if err != nil {
			slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
		} else {
			slog.Info("watching board config", "path", loader.Path())
			defer stopWatch()
		}
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:        addr,
		Handler:     api.New(eng, loader),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errC <- err
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errC:
		slog.Error("server error", "err", err)
		cancel()
		eng.Shutdown()
		return err
	}
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	cancel() // stop worker pool
	eng.Shutdown()
	slog.Info("goodbye")
	return nil
}
