package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/Brownie44l1/fault-api/internal/audit"
	"github.com/Brownie44l1/fault-api/internal/config"
	"github.com/Brownie44l1/fault-api/internal/handlers"
	"github.com/Brownie44l1/fault-api/internal/model"
	"github.com/Brownie44l1/fault-api/internal/mqttbridge"
	"github.com/Brownie44l1/fault-api/internal/predictor"
)

func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}

func main() {
	cfg := config.Load()
	logger := config.InitLogger(cfg)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("loading model", "path", cfg.Model.Path, "metadata", cfg.Model.MetadataPath)

	modelServer, err := model.NewServer(cfg.Model.Path, cfg.Model.MetadataPath, cfg.Model.LibraryPath)
	if err != nil {
		fatal("failed to initialize model server", "error", err)
	}
	defer modelServer.Close()

	var (
		recorder predictor.Recorder
		history  handlers.History
	)
	if cfg.Audit.DBPath != "" {
		store, err := audit.Open(cfg.Audit.DBPath)
		if err != nil {
			fatal("failed to open prediction log", "path", cfg.Audit.DBPath, "error", err)
		}
		defer store.Close()
		recorder, history = store, store
		logger.Info("prediction log enabled", "path", cfg.Audit.DBPath)
	}

	p := predictor.New(modelServer, recorder, logger)

	if cfg.MQTT.Broker != "" {
		bridge, err := mqttbridge.Connect(cfg.MQTT, p, logger)
		if err != nil {
			fatal("failed to start mqtt bridge", "error", err)
		}
		defer bridge.Close()
	}

	handler := handlers.NewHandler(p, history, cfg.Model.Path, logger)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handlers.NewRouter(handler),
	}

	go func() {
		logger.Info("server starting",
			"port", cfg.Port,
			"classes", modelServer.Metadata.Classes,
			"endpoints", []string{"GET /health", "GET /faults", "POST /predict", "GET /predictions"},
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server failed", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
