package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"pollchat/internal/config"
	"pollchat/internal/database"
	"pollchat/internal/store"
)

func main() {
	sqlitePath := flag.String("sqlite", "", "migrate a local SQLite file instead of the configured MySQL database")
	flag.Parse()

	_ = godotenv.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var (
		db  *gorm.DB
		err error
	)
	if *sqlitePath != "" {
		db, err = database.OpenSQLite(*sqlitePath, nil)
	} else {
		cfg, cfgErr := config.Load()
		if cfgErr != nil {
			log.Fatalf("Config error: %v", cfgErr)
		}
		db, err = database.Init(cfg, logger)
	}
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	logger.Info("Running migrations...")
	if err := store.New(db, logger).Migrate(ctx); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	logger.Info("Migrations completed successfully")
}
