package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"spam-detector/internal/config"
	"spam-detector/internal/logger"
	"spam-detector/internal/repository"
	"spam-detector/internal/server"
	"spam-detector/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/config.yml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting spam detection service...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The model is loaded exactly once; a failure here is fatal.
	inference, err := service.Load(ctx, cfg.Model, log)
	if err != nil {
		log.Fatal("Failed to load model", zap.Error(err), zap.String("backend", cfg.Model.Backend))
	}
	defer inference.Close()
	log.Info("Model loaded", zap.Any("model", inference.GetModelInfo()))

	var runs repository.IngestRunRepository
	if cfg.Database.DSN != "" {
		db, err := repository.NewDB(cfg.Database.Driver, cfg.Database.DSN, log)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := repository.MigrateDB(db, cfg.Database.Driver, log); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
		runs = repository.NewIngestRunRepository(db)
	}

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.NewServer(cfg, inference, runs, log)

	go func() {
		if err := srv.Run(); err != nil {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
