package main

import (
	"context"
	"flag"
	"os"

	"spam-detector/internal/config"
	"spam-detector/internal/logger"
	"spam-detector/internal/repository"
	"spam-detector/internal/service"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/config.yml", "path to the YAML config file")
	rawDir := flag.String("raw", "", "override dataset.raw_dir")
	output := flag.String("out", "", "override dataset.output_path")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}
	if *rawDir != "" {
		cfg.Dataset.RawDir = *rawDir
	}
	if *output != "" {
		cfg.Dataset.OutputPath = *output
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

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

	preprocessor, err := service.NewPreprocessor(cfg.Dataset, runs, log)
	if err != nil {
		log.Fatal("Failed to initialize preprocessor", zap.Error(err))
	}

	run, err := preprocessor.Run(context.Background())
	if err != nil {
		log.Error("Preprocessing failed", zap.String("run_id", run.ID), zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}
