package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"m77ag-backend/app"
	"m77ag-backend/config"
	"m77ag-backend/controllers"
	"m77ag-backend/logger"
	"m77ag-backend/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	settings, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger.InitLogger(settings.Stage, settings.LogLevel)
	defer logger.Sync()

	if settings.Stage == logger.ProdStage {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := app.New(settings)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer a.Close()

	if err := controllers.EnsureDefaultReminderTemplates(a.DB); err != nil {
		logger.Error("failed to seed reminder templates", zap.Error(err))
	}

	scheduler := a.Scheduler()
	scheduler.Start()

	r := routes.SetupRouter(routes.Dependencies{
		Settings:  settings,
		DB:        a.DB,
		Store:     a.Store,
		Billing:   a.Billing,
		Reminders: a.Reminders,
		Quotes:    a.Quotes,
	})
	printRoutes(r)

	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	select {
	case <-scheduler.Stop().Done():
	case <-ctx.Done():
		logger.Warn("scheduler jobs still running at shutdown")
	}
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		logger.Debug("route", zap.String("method", route.Method), zap.String("path", route.Path))
	}
}
