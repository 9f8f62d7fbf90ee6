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

	"call-console/internal/audit"
	"call-console/internal/auth"
	"call-console/internal/config"
	"call-console/internal/console"
	"call-console/internal/notify"
	"call-console/internal/records"
	"call-console/internal/reporting"
	"call-console/internal/toolkit"
	"call-console/pkg/logger"
	"call-console/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	commander, err := toolkit.NewHTTPCommander(cfg.Toolkit.BaseURL, cfg.Toolkit.CommandTimeout)
	if err != nil {
		log.Error("toolkit init failed", "err", err)
		os.Exit(1)
	}

	auditSvc := audit.NewService(audit.NewMemoryRepo())
	reports := reporting.NewService(reporting.NewMemoryRepo())

	sessions, err := console.NewManager(console.ManagerOptions{
		Store:             records.NewPostgresStore(db),
		Commander:         commander,
		Notifier:          notify.NewRedisNotifier(rdb, cfg.Redis.NotifyChannel, log),
		Reporter:          reports,
		Logger:            log,
		DiscoveryInterval: cfg.Toolkit.DiscoveryInterval,
		DiscoveryAttempts: cfg.Toolkit.DiscoveryAttempts,
		BaseCtx:           rootCtx,
	})
	if err != nil {
		log.Error("console init failed", "err", err)
		os.Exit(1)
	}
	defer sessions.Close()

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, registerDeps{
		sessions:    sessions,
		authManager: authManager,
		audit:       auditSvc,
		reports:     reports,
		db:          db,
		redis:       rdb,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
