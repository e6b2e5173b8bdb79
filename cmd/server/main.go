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

	"go-ticket-pos/internal/auth"
	"go-ticket-pos/internal/config"
	"go-ticket-pos/internal/database"
	"go-ticket-pos/internal/handlers"
	"go-ticket-pos/internal/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	if err := logger.InitLogger(&cfg.Logger); err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	appLog := logger.MustGetLogger()

	if err := database.Connect(cfg.Database, appLog); err != nil {
		appLog.Fatal("Database unavailable: ", err)
	}
	defer database.Close(database.DB)

	if err := database.Migrate(database.DB); err != nil {
		appLog.Fatal("Migration failed: ", err)
	}

	auth.Configure(cfg.Auth)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		appLog.Fatal("Cannot create upload dir: ", err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handlers.NewRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Info("Server starting on ", cfg.BaseURL, " (", cfg.HTTPAddr, ")")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Server failed to start: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLog.Error("Forced shutdown: ", err)
	}
}
