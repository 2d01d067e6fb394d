package main

import (
	"context"
	"flag"
	"log"

	"github.com/yamdb/yamdb/internal/config"
	"github.com/yamdb/yamdb/internal/database"
	"github.com/yamdb/yamdb/internal/importer"
	"github.com/yamdb/yamdb/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	dir := flag.String("dir", "static/data", "directory holding the CSV exports")
	flag.Parse()

	cfg := config.Load()
	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Migration failed", zap.Error(err))
	}

	stats, err := importer.New(db).Load(context.Background(), *dir)
	if err != nil {
		logger.Log.Fatal("Import failed", zap.String("dir", *dir), zap.Error(err))
	}

	total := 0
	for _, n := range stats {
		total += n
	}
	logger.Log.Info("Import complete", zap.String("dir", *dir), zap.Int("rows", total))
}
