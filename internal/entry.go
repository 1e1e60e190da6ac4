// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/api"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/llm"
	"github.com/starford/raido/internal/mcpserver"
	"github.com/starford/raido/internal/notesource"
	"github.com/starford/raido/internal/pathgen"
	"github.com/starford/raido/internal/pathservice"
	"github.com/starford/raido/internal/similarity"
	"github.com/starford/raido/internal/sse"
	"github.com/starford/raido/internal/storage"
)

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("llm_enabled", cfg.LLM.Enabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, deps, err := buildServices(cfg, logger)
	if err != nil {
		return err
	}
	defer deps.db.Close()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	svc.SetNotifier(broker)

	apiRouter := api.NewRouter(svc, deps.cache, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback and cache invalidation.
	g.Go(func() error {
		_ = index.Watch(gCtx, deps.db, deps.store, cfg.Vault.Path, logger, func(kind, path string) {
			broker.PublishNoteEvent(kind, path)
			deps.cache.Invalidate()
		})
		return nil
	})

	// Keep embedding vectors in sync while the model is configured.
	if deps.model.IsAvailable() {
		g.Go(func() error {
			interval := cfg.LLM.EmbedInterval
			if interval <= 0 {
				interval = 5 * time.Minute
			}
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				n, err := index.SyncEmbeddings(gCtx, deps.db, deps.model, logger)
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Warn("embedding sync failed", slog.String("error", err.Error()))
				} else if n > 0 {
					logger.Info("embeddings synced", slog.Int("written", n))
					deps.cache.Invalidate()
				}

				select {
				case <-gCtx.Done():
					return nil
				case <-ticker.C:
				}
			}
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

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP server on stdio with the given options.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	// MCP talks JSON-RPC on stdout, so logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	svc, deps, err := buildServices(cfg, logger)
	if err != nil {
		return err
	}
	defer deps.db.Close()

	return mcpserver.New(svc, deps.cache).ServeStdio()
}

// dependencies holds the shared infrastructure behind both entry points.
// cache is always constructed; when no API key is configured its IsAvailable
// reports false and the search surfaces degrade to 503.
type dependencies struct {
	store storage.Provider
	db    *index.DB
	model *llm.Client
	cache *similarity.CachedIndex
}

// buildServices constructs the storage, index, LLM, similarity, and path
// service stack shared by the HTTP and MCP entry points. The initial vault
// sync runs before returning so both servers start with a current index.
func buildServices(cfg *Config, logger *slog.Logger) (*pathservice.Service, *dependencies, error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	model := llm.NewClient(llm.Config{
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		Model:          cfg.LLM.Model,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		Temperature:    cfg.LLM.Temperature,
	}, logger)

	cache := similarity.NewCachedIndex(db, model, cfg.LLM.CacheTTL, logger)

	src := notesource.NewVault(store, db)
	gen := pathgen.New(src, model, cache, logger)
	svc := pathservice.New(gen, db, db, pathgen.Options{
		ExcludeFolders: cfg.Vault.ExcludeFolders,
		DefaultMinutes: cfg.Path.DefaultMinutes,
	}, logger)

	return svc, &dependencies{store: store, db: db, model: model, cache: cache}, nil
}
