package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"arena-blitz/server"
	servernet "arena-blitz/server/internal/net"
	"arena-blitz/server/logging"
	loggingSinks "arena-blitz/server/logging/sinks"
)

type Config struct {
	Logger *log.Logger
}

// Run wires the hub, the HTTP surface, and the background loops, then blocks
// until the context is cancelled or the listener fails.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	logConfig := logging.DefaultConfig()
	sinks := map[string]logging.Sink{
		"console": loggingSinks.NewConsoleSink(os.Stdout),
	}
	router, err := logging.NewRouter(logConfig, logging.SystemClock{}, logger, sinks)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			logger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	hubCfg := server.DefaultHubConfig()
	if raw := os.Getenv("MAX_CONNECTIONS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			hubCfg.MaxConnections = value
		} else {
			logger.Printf("invalid MAX_CONNECTIONS=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("KILL_LIMIT"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			hubCfg.Game.KillLimit = value
		} else {
			logger.Printf("invalid KILL_LIMIT=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("TIME_LIMIT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			hubCfg.Game.TimeLimitMs = int64(value) * 1000
		} else {
			logger.Printf("invalid TIME_LIMIT_SECONDS=%q: %v", raw, err)
		}
	}
	hubCfg.Game = hubCfg.Game.Normalized()

	pub := logging.WithFields(router, map[string]any{"service": "arena-blitz"})
	hub := server.NewHubWithConfig(hubCfg, pub)

	stop := make(chan struct{})
	go hub.Run(stop)
	defer close(stop)

	handler := servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{Logger: logger})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Printf("server listening on %s", srv.Addr)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Shutdown(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("forcing listener close: %v", err)
		srv.Close()
	}
	return nil
}
