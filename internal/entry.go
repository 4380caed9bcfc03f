// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/collabeat/internal/api"
	"github.com/starford/collabeat/internal/beatservice"
	"github.com/starford/collabeat/internal/fetch"
	"github.com/starford/collabeat/internal/mcpserver"
	"github.com/starford/collabeat/internal/sse"
	"github.com/starford/collabeat/internal/storage"
	pkgconfig "github.com/starford/collabeat/pkg/config"
)

var errConfigRequired = errors.New("config is required")

// Runtime is the assembled core: the beat service and, when content comes
// from IPFS, the fetcher whose defaults follow config reloads.
type Runtime struct {
	Service *beatservice.Service
	IPFS    *fetch.IPFS
}

// NewRuntime builds the content fetcher selected by cfg.Content and the
// beat service on top of it.
func NewRuntime(cfg *Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{}
	var fetcher fetch.Fetcher
	switch cfg.Content.Source {
	case ContentSourceLocal:
		if err := os.MkdirAll(cfg.Content.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create content dir: %w", err)
		}
		store, err := storage.NewFS(cfg.Content.Dir)
		if err != nil {
			return nil, fmt.Errorf("init content store: %w", err)
		}
		fetcher = store
	default:
		rt.IPFS = fetch.NewIPFS(fetch.IPFSOptions{
			Bin:      cfg.IPFS.Bin,
			Defaults: cfg.IPFS.Defaults(),
		})
		fetcher = rt.IPFS
	}
	rt.Service = beatservice.NewService(fetcher, logger)
	return rt, nil
}

// reload re-reads the config file and applies the settings that can change
// at runtime: log level and fetch defaults.
func (rt *Runtime) reload(path string, level *slog.LevelVar, logger *slog.Logger) {
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		logger.Warn("config reload failed", slog.String("error", err.Error()))
		return
	}
	level.Set(cfg.App.LogLevel)
	if rt.IPFS != nil {
		rt.IPFS.SetDefaults(cfg.IPFS.Defaults())
	}
	logger.Info("Configuration reloaded",
		slog.String("ipfs_multiaddr", cfg.IPFS.Multiaddr),
		slog.Uint64("ipfs_timeout_sec", cfg.IPFS.TimeoutSec),
		slog.String("log_level", cfg.App.LogLevel.String()))
}

func newLogger(w io.Writer, level *slog.LevelVar) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	level := new(slog.LevelVar)
	level.Set(cfg.App.LogLevel)
	logger := newLogger(os.Stdout, level)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_source", cfg.Content.Source),
		slog.String("ipfs_multiaddr", cfg.IPFS.Multiaddr),
		slog.Uint64("ipfs_timeout_sec", cfg.IPFS.TimeoutSec),
		slog.String("log_level", cfg.App.LogLevel.String()))

	rt, err := NewRuntime(cfg, logger)
	if err != nil {
		return err
	}

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

	handler := api.NewHandler(rt.Service, broker)
	apiRouter := api.NewRouter(handler, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Hot reload of fetch defaults and log level.
	if app.configPath != "" {
		g.Go(func() error {
			return pkgconfig.Watch(gCtx, app.configPath, logger, func() {
				rt.reload(app.configPath, level, logger)
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// Stop the watcher too.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdio. Logs go to stderr since stdout
// carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	level := new(slog.LevelVar)
	level.Set(cfg.App.LogLevel)
	logger := newLogger(os.Stderr, level)
	slog.SetDefault(logger)

	rt, err := NewRuntime(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("MCP server starting", slog.String("content_source", cfg.Content.Source))
	return mcpserver.New(rt.Service, app.version).ServeStdio()
}
