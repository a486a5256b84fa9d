package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baharkarakas/blog-backend/internal/api"
	"github.com/baharkarakas/blog-backend/internal/auth"
	"github.com/baharkarakas/blog-backend/internal/config"
	"github.com/baharkarakas/blog-backend/internal/db"
	"github.com/baharkarakas/blog-backend/internal/logger"
	"github.com/baharkarakas/blog-backend/internal/metrics"
	"github.com/baharkarakas/blog-backend/internal/policy"
	repo "github.com/baharkarakas/blog-backend/internal/repository"
	"github.com/baharkarakas/blog-backend/internal/repository/memory"
	"github.com/baharkarakas/blog-backend/internal/repository/postgres"
	"github.com/baharkarakas/blog-backend/internal/services"
	"github.com/baharkarakas/blog-backend/internal/worker"
)

type stores struct {
	users      repo.Users
	posts      repo.Posts
	categories repo.Categories
	close      func()
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	metrics.Init()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer)
	postOpts := []services.PostOption{
		services.WithPolicy(policy.Ownership{AdminOverride: cfg.AdminOverride}),
	}
	if cfg.ViewCountMode == config.ViewsAsync {
		wp := worker.NewPool(cfg.WorkerCount, 0)
		defer wp.Stop()
		postOpts = append(postOpts, services.WithAsyncViews(wp))
	}

	r := api.NewRouter(api.RouterDeps{
		Cfg:        cfg,
		Log:        log,
		Tokens:     tokens,
		Users:      services.NewUserService(st.users, tokens),
		Posts:      services.NewPostService(st.posts, st.categories, postOpts...),
		Categories: services.NewCategoryService(st.categories),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "store", cfg.StoreDriver,
			"view_count_mode", cfg.ViewCountMode, "admin_override", cfg.AdminOverride)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (stores, error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("using in-memory store; data is lost on restart")
		m := memory.NewRepositories()
		return stores{users: m.Users, posts: m.Posts, categories: m.Categories, close: func() {}}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return stores{}, err
	}
	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return stores{}, err
		}
	}
	pg := postgres.NewRepositories(pool)
	return stores{users: pg.Users, posts: pg.Posts, categories: pg.Categories, close: pool.Close}, nil
}
