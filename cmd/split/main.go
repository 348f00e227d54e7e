package main

import (
	"flag"

	"spam-detector/internal/config"
	"spam-detector/internal/logger"
	"spam-detector/internal/service"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/config.yml", "path to the YAML config file")
	fraction := flag.Float64("validation-fraction", 0, "override split.validation_fraction")
	seed := flag.Int64("seed", 0, "override split.seed")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}
	if *fraction != 0 {
		cfg.Split.ValidationFraction = *fraction
	}
	if *seed != 0 {
		cfg.Split.Seed = *seed
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	if _, err := service.SplitCorpus(cfg, log); err != nil {
		log.Fatal("Failed to split corpus", zap.Error(err))
	}
}
