package main

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
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"blog-console/internal/client/api"
	"blog-console/internal/config"
	"blog-console/internal/domain/models"
	"blog-console/internal/http-server/handlers/admin"
	"blog-console/internal/http-server/handlers/article"
	"blog-console/internal/http-server/handlers/user"
	"blog-console/internal/http-server/middleware/gate"
	"blog-console/internal/http-server/view"
	"blog-console/internal/lib/inflight"
	"blog-console/internal/lib/logger"
	"blog-console/internal/lib/logger/sl"
	"blog-console/internal/lib/retry"
	"blog-console/internal/lib/validate"
	articleservice "blog-console/internal/service/article"
	authservice "blog-console/internal/service/auth"
	categoryservice "blog-console/internal/service/category"
	"blog-console/internal/session"
	"blog-console/internal/storage/redis"
	"blog-console/internal/storage/sqlite"
)

const sweepInterval = 10 * time.Minute

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	log := logger.New(cfg.Env)

	if err := run(log, cfg); err != nil {
		log.Error("server failed", sl.Error(err))
		os.Exit(1)
	}
}

// run wires the console and serves until SIGINT or SIGTERM.
func run(log *slog.Logger, cfg *config.Config) error {
	const op = "main.run"

	log.Debug("initializing server...", slog.String("addr", cfg.Address), slog.String("api", cfg.API.BaseURL))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, os.Interrupt)
	defer stop()

	// Init session storage
	repo, closeRepo, err := openSessionStore(ctx, log, cfg)
	if err != nil {
		return fmt.Errorf("%s: open session storage: %w", op, err)
	}
	defer closeRepo()

	sessions := session.New(log, repo, cfg.Session.Secret, cfg.Session.TTL)
	sessions.SecureCookies(cfg.Env == config.EnvProd)

	// Init backend client
	client, err := api.New(cfg.API.BaseURL,
		api.WithTokenSource(api.TokenFunc(session.Token)),
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("%s: create api client: %w", op, err)
	}

	// Init service layer
	policy := retry.Fixed(cfg.API.Retries, cfg.API.RetryDelay)
	validator := validate.New()

	authSrv := authservice.New(log, client, validator)
	categorySrv := categoryservice.New(log, client, validator, policy)
	articleSrv := articleservice.New(log, client, categorySrv, validator, policy)

	views := view.MustNew()
	registry := inflight.NewRegistry()

	// Handlers and middleware
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(sessions.Load)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/articles", http.StatusFound)
		})

		// Init handlers
		usr := user.New(log, authSrv, sessions, views)
		art := article.New(log, articleSrv, categorySrv, registry, views)
		adminArts := admin.NewArticles(log, articleSrv, categorySrv, registry, views)
		adminCats := admin.NewCategories(log, categorySrv, sessions, registry, views)

		r.Group(usr.Register())
		r.Route("/articles", art.Register())

		r.Route("/admin", func(r chi.Router) {
			r.Use(gate.New(log, views, cfg.Session.GateDelay).Require(models.RoleAdmin))

			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/admin/articles", http.StatusFound)
			})
			r.Route("/articles", adminArts.Register())
			r.Route("/categories", adminCats.Register())
		})
	})

	srv := http.Server{
		Handler:      r,
		Addr:         cfg.Address,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	log.Debug("server initialized")
	log.Info("server is running...", slog.String("addr", cfg.Address))

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("error starting server", sl.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	// Gracefully shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("error stopping server", sl.Error(err))
	}

	log.Info("server stopped")

	return nil
}

// openSessionStore opens the configured session repository. For sqlite it
// also starts sweeping expired sessions until ctx is done.
func openSessionStore(ctx context.Context, log *slog.Logger, cfg *config.Config) (session.Repository, func(), error) {
	switch cfg.Session.Store {
	case config.StoreRedis:
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Session.Redis.Addr,
			Password: cfg.Session.Redis.Password,
			DB:       cfg.Session.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}

		log.Debug("session store: redis", slog.String("addr", cfg.Session.Redis.Addr))

		return redis.New(client), func() { _ = client.Close() }, nil
	default:
		storage, err := sqlite.New(cfg.Session.StoragePath)
		if err != nil {
			return nil, nil, err
		}

		log.Debug("session store: sqlite", slog.String("path", cfg.Session.StoragePath))

		go sweep(ctx, log, storage)

		return storage, func() { _ = storage.Close() }, nil
	}
}

func sweep(ctx context.Context, log *slog.Logger, storage *sqlite.Storage) {
	const op = "main.sweep"

	log = log.With(slog.String("op", op))

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := storage.DeleteExpired(ctx, now)
			if err != nil {
				log.Error("failed to delete expired sessions", sl.Error(err))
				continue
			}
			if n > 0 {
				log.Debug("expired sessions deleted", slog.Int64("count", n))
			}
		}
	}
}
