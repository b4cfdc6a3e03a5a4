package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/p-n-ai/stemblast/internal/ai"
	"github.com/p-n-ai/stemblast/internal/api"
	"github.com/p-n-ai/stemblast/internal/bank"
	"github.com/p-n-ai/stemblast/internal/catalog"
	"github.com/p-n-ai/stemblast/internal/events"
	"github.com/p-n-ai/stemblast/internal/generate"
	"github.com/p-n-ai/stemblast/internal/platform/cache"
	"github.com/p-n-ai/stemblast/internal/platform/config"
	"github.com/p-n-ai/stemblast/internal/platform/database"
	"github.com/p-n-ai/stemblast/internal/quiz"
	"github.com/p-n-ai/stemblast/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Log, os.Stdout))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a, err := build(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.close()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      a.handler(cfg.Server.AllowedOrigins),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "bank_source", cfg.Bank.Source)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// newLogger builds the process logger from LEARN_LOG_FORMAT and LEARN_LOG_LEVEL.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// app holds the wired components and the connections to release on exit.
type app struct {
	server  *api.Server
	checks  map[string]func(context.Context) error
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) handler(allowedOrigins []string) http.Handler {
	mux := newMux(a.checks)
	a.server.Register(mux)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"X-Request-ID"},
	})
	return c.Handler(mux)
}

func build(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{checks: map[string]func(context.Context) error{}}
	ok := false
	defer func() {
		if !ok {
			a.close()
		}
	}()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	locator := quiz.NewLocator(cat.SubjectTokens())

	var db *database.DB
	if cfg.Database.URL != "" {
		db, err = database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		a.checks["database"] = db.HealthCheck
		if err := database.Migrate(ctx, db.Pool); err != nil {
			return nil, err
		}
	}

	var kv *cache.Cache
	if cfg.Cache.URL != "" {
		kv, err = cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = kv.Close() })
		a.checks["cache"] = kv.HealthCheck
	}

	source, err := newSource(cfg, db, kv, locator, a.checks)
	if err != nil {
		return nil, err
	}

	opts := []api.Option{
		api.WithCatalog(cat),
		api.WithLocator(locator),
		api.WithHistoryLimit(cfg.HistoryLimit),
		api.WithAllowedOrigins(cfg.Server.AllowedOrigins),
	}
	if kv != nil {
		opts = append(opts, api.WithSessions(session.NewRedisStore(kv, cfg.HistoryLimit, cfg.Cache.HistoryTTL)))
	} else {
		opts = append(opts, api.WithSessions(session.NewMemoryStore(cfg.HistoryLimit, cfg.Cache.HistoryTTL)))
	}
	if db != nil {
		opts = append(opts, api.WithEvents(events.NewPostgresLogger(db.Pool)))
	}

	a.server = api.New(quiz.NewSelector(source), opts...)
	ok = true
	return a, nil
}

func newSource(cfg *config.Config, db *database.DB, kv *cache.Cache, locator *quiz.Locator, checks map[string]func(context.Context) error) (quiz.Source, error) {
	if cfg.Bank.Source == config.SourceGenerative {
		router, err := newAIRouter(cfg.AI)
		if err != nil {
			return nil, err
		}
		checks["ai"] = router.HealthCheck
		slog.Info("generative question source", "providers", router.Names())
		return generate.New(router,
			generate.WithModel(cfg.AI.Model),
			generate.WithTimeout(cfg.AI.Timeout),
			generate.WithHistoryLimit(cfg.HistoryLimit),
		)
	}

	var store bank.Store
	switch cfg.Bank.Source {
	case config.SourcePostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres bank source needs a database")
		}
		pg, err := bank.NewPostgresStore(db.Pool)
		if err != nil {
			return nil, err
		}
		store = pg
	default:
		files := bank.Starter()
		if cfg.Bank.Dir != "" {
			dir, err := bank.NewDirStore(cfg.Bank.Dir)
			if err != nil {
				return nil, err
			}
			files = dir
		}
		if keys, err := files.Keys(); err == nil {
			slog.Info("question banks found", "count", len(keys), "dir", cfg.Bank.Dir)
		}
		store = files
	}

	if kv != nil {
		store = bank.NewCachedStore(store, kv, cfg.Cache.BankTTL)
	}
	return quiz.NewBankSource(store, quiz.WithLocator(locator)), nil
}

// newAIRouter registers every configured provider in preference order.
// Each provider keeps its own default model; LEARN_GENERATIVE_MODEL is sent
// with every request instead.
func newAIRouter(cfg config.AIConfig) (*ai.Router, error) {
	router := ai.NewRouter()

	if cfg.OpenAI.APIKey != "" {
		router.Register("openai", ai.NewOpenAIProvider(cfg.OpenAI.APIKey))
	}
	if cfg.Anthropic.APIKey != "" {
		p, err := ai.NewAnthropicProvider(cfg.Anthropic.APIKey)
		if err != nil {
			return nil, err
		}
		router.Register("anthropic", p)
	}
	if cfg.DeepSeek.APIKey != "" {
		router.Register("deepseek", ai.NewDeepSeekProvider(cfg.DeepSeek.APIKey))
	}
	if cfg.Ollama.Enabled {
		router.Register("ollama", ai.NewOllamaProvider(cfg.Ollama.URL))
	}

	if !router.HasProvider() {
		return nil, ai.ErrNoProvider
	}
	return router, nil
}

// newMux creates the HTTP router with health check endpoints.
func newMux(checks map[string]func(context.Context) error) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", readyzHandler(checks))
	return mux
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// readyzHandler runs every dependency check concurrently.
func readyzHandler(checks map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		for name, check := range checks {
			g.Go(func() error {
				if err := check(gctx); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				return nil
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := g.Wait(); err != nil {
			slog.Warn("readiness check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}
}
