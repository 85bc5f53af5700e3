package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pharmacy/backend/internal/domain/cart"
	"github.com/pharmacy/backend/internal/domain/catalog"
	"github.com/pharmacy/backend/internal/domain/identity"
	"github.com/pharmacy/backend/internal/domain/inventory"
	"github.com/pharmacy/backend/internal/domain/order"
	"github.com/pharmacy/backend/internal/domain/prescription"
	"github.com/pharmacy/backend/internal/infrastructure/config"
	"github.com/pharmacy/backend/internal/infrastructure/logger"
	"github.com/pharmacy/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	log.Info("Running schema migration",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)

	err = db.DB.AutoMigrate(
		&identity.User{},
		&catalog.Product{},
		&inventory.Batch{},
		&order.Order{},
		&order.Item{},
		&prescription.Prescription{},
		&cart.ShadowItem{},
	)
	if err != nil {
		log.Fatal("Schema migration failed", zap.Error(err))
	}

	if err := persistence.EnsureOneActiveOrderIndex(db.DB); err != nil {
		log.Fatal("Failed to create active-order index", zap.Error(err))
	}

	log.Info("Schema migration completed successfully")
}
