package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gatehouse-io/gatehouse/internal/app"
	"github.com/gatehouse-io/gatehouse/internal/auth"
	"github.com/gatehouse-io/gatehouse/internal/observability"
	"github.com/gatehouse-io/gatehouse/internal/platform/db"
	"github.com/gatehouse-io/gatehouse/internal/rbac"
	"github.com/gatehouse-io/gatehouse/internal/tasks"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := observability.NewMetrics()

	tokenCodec := auth.NewTokenCodec(cfg.JWTSecret, cfg.JWTTTL)
	authRepo := auth.NewRepository(pool)
	resolver := auth.NewResolver(tokenCodec, authRepo, logger)
	authService := auth.NewService(authRepo, tokenCodec)
	authHandler := auth.NewHandler(logger, authService)

	ruleStore := rbac.NewRuleStore(pool)
	enforcer := rbac.NewEnforcer(ruleStore, metrics, logger)
	authz := rbac.Middleware{Enforcer: enforcer, Logger: logger}
	adminHandler := rbac.NewHandler(logger, rbac.NewRepository(pool), authz)

	tasksRepo := tasks.NewRepository(pool)
	tasksService := tasks.NewService(tasksRepo, enforcer)
	tasksHandler := tasks.NewHandler(logger, tasksService, authz)

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		Resolver:     resolver,
		AuthHandler:  authHandler,
		TasksHandler: tasksHandler,
		AdminHandler: adminHandler,
		Metrics:      metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
