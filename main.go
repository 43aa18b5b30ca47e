// file: main.go
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

	"github.com/alpnix/HackAtDavidson/config"
	"github.com/alpnix/HackAtDavidson/controllers"
	"github.com/alpnix/HackAtDavidson/database"
	"github.com/alpnix/HackAtDavidson/logger"
	"github.com/alpnix/HackAtDavidson/routes"
	"github.com/alpnix/HackAtDavidson/services"
	"github.com/alpnix/HackAtDavidson/utils"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if cfg.AutoMigrate {
		if err := database.MigrateTables(db); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
	}
	if err := database.Seed(ctx, db, cfg); err != nil {
		log.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	rdb, err := database.InitRedis(ctx, cfg)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	storage, err := services.NewStorage(cfg)
	if err != nil {
		log.Error("storage init failed", "error", err)
		os.Exit(1)
	}

	kv := services.NewKV(rdb)
	mailer, err := services.NewMailer(cfg)
	if err != nil {
		log.Error("mailer setup failed", "error", err)
		os.Exit(1)
	}
	settings := services.NewSettingService(db)
	stats := services.NewStatsService(db, kv)
	notifier, err := services.NewNotifier(cfg, db, rdb)
	if err != nil {
		log.Error("membership notifier setup failed", "error", err)
		os.Exit(1)
	}
	members := services.NewMembershipIndex(services.GormBusyLoader(db), notifier)
	tokens := utils.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	forms := services.NewFormService(db, storage, cfg.PublicBaseURL)

	h := &controllers.Handler{
		Registrations: services.NewRegistrationService(db, settings, storage, mailer, stats, members),
		Stats:         stats,
		Members:       members,
		Projects:      services.NewProjectService(db, settings, members),
		Blogs:         services.NewBlogService(services.NewGormBlogRepository(db), services.NewViewTracker(kv), storage),
		Forms:         forms,
		Auth:          services.NewAuthService(db, tokens, kv, mailer),
		Staff:         services.NewStaffService(db),
		Settings:      settings,
		Site:          services.NewSiteService(db, members),
		Shutdown:      ctx.Done(),
	}

	go func() {
		if err := members.Run(ctx); err != nil {
			log.Error("membership index stopped", "error", err)
		}
	}()
	if _, err := services.StartOverdueSweeper(ctx, forms); err != nil {
		log.Error("cron setup failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRouter(cfg, log, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("Starting server", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
