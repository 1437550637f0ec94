// relayd is the screen-frame relay daemon: it accepts WebSocket
// connections from capture producers, viewer consumers and desktop
// spawners, and routes frames and control commands between them.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/screen-relay/internal/config"
	"github.com/rickgao/screen-relay/internal/instance"
	"github.com/rickgao/screen-relay/internal/protocol"
	"github.com/rickgao/screen-relay/internal/registry"
	"github.com/rickgao/screen-relay/internal/relay"
	"github.com/rickgao/screen-relay/internal/server"
	"github.com/rickgao/screen-relay/internal/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "configs/relayd.yaml", "path to config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	// Set up structured logging
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting relayd",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration (missing file = defaults)
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"ping_interval", cfg.Relay.PingInterval,
		"health_port", cfg.Health.Port,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Wire the relay core
	reg := registry.New(logger)
	instances := instance.NewManager(logger)
	rel := relay.New(relay.Config{
		PingInterval: cfg.Relay.PingInterval,
		CaptureDefaults: protocol.CaptureConfig{
			FPS:     cfg.Capture.FPS,
			Quality: cfg.Capture.Quality,
			Scale:   cfg.Capture.Scale,
			Format:  cfg.Capture.Format,
		},
	}, reg, instances, logger)

	srv := server.New(cfg.Server, cfg.Relay.SendBufferSize, rel, logger)
	if err := srv.Start(ctx); err != nil {
		logger.Error("failed to start relay server", "error", err)
		os.Exit(1)
	}

	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(cfg.Health.Path, reg, instances, srv),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting health server", "port", cfg.Health.Port, "path", cfg.Health.Path)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("health server shutdown failed", "error", err)
		}
		return srv.Stop(shutdownCtx)
	})

	logger.Info("relayd running",
		"ws_url", fmt.Sprintf("ws://localhost:%d/", cfg.Server.Port),
		"health_url", fmt.Sprintf("http://localhost:%d%s", cfg.Health.Port, cfg.Health.Path),
	)

	if err := g.Wait(); err != nil {
		logger.Error("relayd exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("relayd stopped")
}

// createHealthHandler serves liveness plus registry and instance stats.
func createHealthHandler(path string, reg *registry.Registry, instances *instance.Manager, srv *server.Server) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		status := struct {
			Status           string         `json:"status"`
			Version          string         `json:"version"`
			OpenConnections  int            `json:"open_connections"`
			Connections      registry.Stats `json:"connections"`
			DesktopInstances int            `json:"desktop_instances"`
		}{
			Status:           "ok",
			Version:          version.String(),
			OpenConnections:  srv.ConnCount(),
			Connections:      reg.Stats(),
			DesktopInstances: instances.Len(),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	})
	return mux
}
