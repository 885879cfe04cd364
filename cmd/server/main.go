package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"smart_tracker/internal/config"
	"smart_tracker/internal/controllers"
	"smart_tracker/internal/logger"
	"smart_tracker/internal/observability"
	"smart_tracker/internal/routes"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	// Initialize structured logging to file
	accessLog := logger.Setup(cfg.LogFile, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	activities, err := config.OpenStore(cfg)
	if err != nil {
		logrus.WithError(err).WithField("driver", cfg.StoreDriver).Fatal("failed to open activity store")
	}
	if n, err := activities.Count(context.Background()); err == nil {
		observability.SetActivitiesStored(n)
	}

	hub := controllers.NewActivityHub()

	r, err := routes.SetupRouter(routes.Options{
		Store:          activities,
		Hub:            hub,
		AccessLog:      accessLog,
		BodyLimitBytes: cfg.BodyLimitBytes,
		RateLimit:      cfg.RateLimit,
		JWTSecret:      cfg.JWTSecret,
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to build router")
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":   cfg.Addr(),
			"driver": cfg.StoreDriver,
		}).Info("SmartTracker server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	<-shutdownCh
	logrus.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Warn("graceful shutdown failed")
	}
	hub.Close()
	if err := activities.Close(); err != nil {
		logrus.WithError(err).Warn("closing activity store failed")
	}
}
