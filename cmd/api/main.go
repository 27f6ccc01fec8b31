package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gravadigital/pulsepoll-api/internal/archive"
	"github.com/gravadigital/pulsepoll-api/internal/broadcast"
	"github.com/gravadigital/pulsepoll-api/internal/config"
	"github.com/gravadigital/pulsepoll-api/internal/domain/poll"
	"github.com/gravadigital/pulsepoll-api/internal/logger"
	"github.com/gravadigital/pulsepoll-api/internal/server"
	"github.com/gravadigital/pulsepoll-api/internal/services"
	"github.com/gravadigital/pulsepoll-api/internal/storage"
)

func main() {
	cfg := config.Load()
	logger.Initialize(cfg.Server.LogLevel)
	log := logger.Get()

	catalog, err := loadCatalog(cfg)
	if err != nil {
		log.Error("Failed to load poll catalog", "error", err)
		os.Exit(1)
	}
	log.Info("Poll catalog loaded", "polls", catalog.Len())

	votes, err := storage.NewVoteRepository(cfg)
	if err != nil {
		log.Error("Failed to initialize vote store", "error", err, "backend", cfg.Storage.Backend)
		os.Exit(1)
	}
	log.Info("Vote store ready", "backend", cfg.Storage.Backend)

	var archiver services.Archiver
	if cfg.ArchiveEnabled() {
		snapshotArchiver, err := archive.NewSnapshotArchiver(context.Background(), cfg)
		if err != nil {
			log.Error("Failed to initialize snapshot archive", "error", err)
			os.Exit(1)
		}
		archiver = snapshotArchiver
		log.Info("Snapshot archive ready", "bucket", cfg.Archive.Bucket)
	}

	hub := broadcast.NewHub()
	service := services.NewIngestion(catalog, votes, hub, archiver)

	srv := server.New(cfg, service, hub)

	if cfg.Server.PublicURL != "" {
		// The tunnel/proxy in front of us is an external concern; we only
		// announce the URL to connected dashboards.
		hub.Publish(broadcast.TunnelReady(cfg.Server.PublicURL))
		log.Info("Public URL announced", "url", cfg.Server.PublicURL)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	case sig := <-quit:
		log.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Stop(ctx); err != nil {
			log.Error("Graceful shutdown failed", "error", err)
			os.Exit(1)
		}
	}

	log.Info("Server stopped")
}

func loadCatalog(cfg *config.Config) (*poll.Catalog, error) {
	if cfg.Polls.File != "" {
		return poll.LoadCatalog(cfg.Polls.File)
	}
	return poll.DefaultCatalog(), nil
}
