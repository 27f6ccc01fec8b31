package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gravadigital/pulsepoll-api/internal/config"
	"github.com/gravadigital/pulsepoll-api/internal/domain/poll"
	"github.com/gravadigital/pulsepoll-api/internal/logger"
	"github.com/gravadigital/pulsepoll-api/internal/storage/migrations"
	"github.com/gravadigital/pulsepoll-api/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	logger.Initialize("info")
	log := logger.Migration()

	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	seed := flag.Bool("seed", true, "Mirror the poll catalog into the database")
	flag.Parse()

	log.Info("Starting migration process", "rollback", *rollback)

	db, err := postgres.Connect(cfg)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if *rollback {
		log.Info("Rolling back migrations...")
		if err := migrations.RollbackMigration(db); err != nil {
			log.Error("Migration rollback failed", "error", err)
			os.Exit(1)
		}
		log.Info("Migration rollback completed successfully")
	} else {
		log.Info("Running migrations...")
		if err := migrations.RunMigrations(db); err != nil {
			log.Error("Migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("Migrations completed successfully")

		if *seed {
			catalog := poll.DefaultCatalog()
			if cfg.Polls.File != "" {
				catalog, err = poll.LoadCatalog(cfg.Polls.File)
				if err != nil {
					log.Error("Failed to load poll catalog", "error", err)
					os.Exit(1)
				}
			}

			if err := migrations.SeedCatalog(db, catalog); err != nil {
				log.Error("Catalog seed failed", "error", err)
				os.Exit(1)
			}
		}
	}

	fmt.Println("Migration process completed!")
}
