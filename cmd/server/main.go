package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/danceflow/attendance-api/api/swagger"
	"github.com/danceflow/attendance-api/internal/handler"
	"github.com/danceflow/attendance-api/internal/middleware"
	"github.com/danceflow/attendance-api/internal/service"
	"github.com/danceflow/attendance-api/internal/sheets"
	"github.com/danceflow/attendance-api/internal/store"
	"github.com/danceflow/attendance-api/pkg/config"
	"github.com/danceflow/attendance-api/pkg/logger"
	corsmiddleware "github.com/danceflow/attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/danceflow/attendance-api/pkg/middleware/requestid"
)

// @title DanceFlow Attendance API
// @version 1.0.0
// @description Batch and attendance tracking for a dance studio
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := store.New(store.DefaultSnapshot())
	metrics := service.NewMetricsService()
	sheetClient := sheets.NewClient(cfg.Sheets, logr)
	policy := service.NewPolicy(cfg.Policy.AdminOnlySessionDelete)

	authSvc := service.NewAuthService(st, nil, logr, cfg.Auth)
	batchSvc := service.NewBatchService(st, policy, nil, logr)
	studentSvc := service.NewStudentService(st, policy, nil, logr)
	sessionSvc := service.NewSessionService(st, sheetClient, policy, nil, logr, metrics, cfg.Sync)
	exportSvc := service.NewExportService(st, policy, logr)
	userSvc := service.NewUserService(st)

	sessionSvc.Start(ctx)
	defer sessionSvc.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handlers := handler.New(authSvc, batchSvc, studentSvc, sessionSvc, exportSvc, userSvc, cfg.Export.Enabled)
	handlers.Register(r, cfg.APIPrefix, authSvc)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting",
			"addr", srv.Addr,
			"env", cfg.Env,
			"sheets_simulated", sheetClient.Simulated())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
