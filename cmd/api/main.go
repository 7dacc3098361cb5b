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

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/design-inspector-go/internal/config"
	"github.com/anime-shed/design-inspector-go/internal/container"
	"github.com/anime-shed/design-inspector-go/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile := logger.Configure(cfg.Log.Level, logger.FileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer logFile.Close()

	gin.SetMode(cfg.GinMode)

	c, err := container.NewContainer(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize container")
	}

	server := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           c.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		// leave room to write the error body after the request deadline fires
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"address":       cfg.ServerAddress(),
			"timeout":       cfg.RequestTimeout.String(),
			"analysis_mode": cfg.AnalysisMode,
			"azure_enabled": cfg.Azure.Enabled(),
			"kafka_enabled": cfg.Kafka.Enabled(),
		}).Info("Starting HTTP server")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	if err := c.Close(); err != nil {
		logger.WithError(err).Error("Failed to release resources")
	}

	logger.Info("Server exited")
}
