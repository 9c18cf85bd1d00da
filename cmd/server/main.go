package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"taskboard/internal/config"
	"taskboard/internal/dashboard"
	"taskboard/internal/handler"
	"taskboard/internal/httpserver"
	"taskboard/internal/repository"
	"taskboard/internal/storeclient"
	"taskboard/internal/submission"
	"taskboard/internal/task"
	pkgconfig "taskboard/pkg/config"
	"taskboard/pkg/db"
	"taskboard/pkg/logger"
	"taskboard/pkg/mq"
	"taskboard/pkg/otel"
	"taskboard/pkg/outbox"
	"taskboard/pkg/redis"
	"taskboard/pkg/util"
)

var errMQDisconnected = errors.New("mq connection closed")

func main() {
	env := pkgconfig.GetConfigEnv()
	cfg, err := config.Load(env, pkgconfig.GetEnv("CONFIG_DIR", "config"))
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.Server.LogLevel)
	defer log.Sync()

	log.Info("Starting taskboard...",
		zap.String("env", env),
		zap.String("store_url", cfg.Store.BaseURL),
		zap.String("redis_addr", cfg.Redis.Addr),
		zap.Bool("audit_enabled", cfg.DB.Enabled()),
	)

	shutdownTracing, err := otel.Init(cfg.OTel, log)
	if err != nil {
		log.Fatal("Failed to init OpenTelemetry", zap.Error(err))
	}
	defer shutdownTracing()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("Invalid timezone", zap.Error(err))
	}
	normalizer := task.NewNormalizer(loc)
	store := storeclient.New(cfg.Store, log)

	// Redis: 提交防重 + 失败计数
	rdb := redis.NewRedisClient(cfg.Redis)
	defer rdb.Close()
	readyChecks := map[string]httpserver.ReadyCheck{
		"redis": func(ctx context.Context) error { return redis.Ping(ctx, rdb) },
	}

	submissionOpts := []submission.Option{
		submission.WithGuard(util.NewDeduper(rdb, cfg.Redis.GuardTTL, log)),
		submission.WithAttemptCounter(util.NewAttemptCounter(rdb, 24*time.Hour)),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB + Outbox（可选）
	var adminHandler *handler.AdminHandler
	var historyHandler *handler.HistoryHandler
	if cfg.DB.Enabled() {
		log.Info("Initializing database connection...")
		dbConn, err := db.NewConnection(cfg.DB, log)
		if err != nil {
			log.Fatal("Failed to init DB", zap.Error(err))
		}
		defer dbConn.Close()
		readyChecks["db"] = dbConn.Ping

		outboxRepo := outbox.NewRepository(dbConn)
		submissionRepo := repository.NewSubmissionRepository(dbConn, outboxRepo, log)
		submissionOpts = append(submissionOpts, submission.WithRecorder(submissionRepo))
		historyHandler = handler.NewHistoryHandler(submissionRepo, log)

		if cfg.MQ.URL != "" {
			publisher, err := mq.NewPublisher(cfg.MQ.URL)
			if err != nil {
				log.Fatal("Failed to init MQ publisher", zap.Error(err))
			}
			defer publisher.Close()
			readyChecks["mq"] = func(context.Context) error {
				if !publisher.IsConnected() {
					return errMQDisconnected
				}
				return nil
			}

			dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log)
			go dispatcher.Start(ctx)

			adminHandler = handler.NewAdminHandler(outbox.NewReplayService(outboxRepo, publisher, log), log)
		} else {
			log.Warn("MQ not configured, submission events stay in the outbox")
		}
	}

	dashboardSvc := dashboard.NewService(store, normalizer, log)
	submissionSvc := submission.NewService(store, normalizer, log, submissionOpts...)

	router := httpserver.NewRouter(httpserver.Deps{
		Dashboard:   handler.NewDashboardHandler(dashboardSvc, log),
		Submission:  handler.NewSubmissionHandler(submissionSvc, log),
		Admin:       adminHandler,
		History:     historyHandler,
		JWTSecret:   cfg.JWT.Secret,
		Logger:      log,
		ReadyChecks: readyChecks,
	})

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down taskboard gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("taskboard shutdown complete")
}
