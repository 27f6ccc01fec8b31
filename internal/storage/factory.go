package storage

import (
	"fmt"

	"github.com/gravadigital/pulsepoll-api/internal/config"
	"github.com/gravadigital/pulsepoll-api/internal/storage/memory"
	"github.com/gravadigital/pulsepoll-api/internal/storage/postgres"
	"github.com/gravadigital/pulsepoll-api/internal/storage/redis"
)

// Backend represents the type of vote storage backend
type Backend string

const (
	// BackendPostgres stores votes in PostgreSQL via GORM
	BackendPostgres Backend = "postgres"
	// BackendRedis stores votes in Redis hashes
	BackendRedis Backend = "redis"
	// BackendMemory stores votes in process memory (development only)
	BackendMemory Backend = "memory"
)

// SupportedBackends returns the list of supported storage backends
func SupportedBackends() []Backend {
	return []Backend{BackendPostgres, BackendRedis, BackendMemory}
}

// ValidateBackend validates if a backend name is supported
func ValidateBackend(name string) (Backend, error) {
	b := Backend(name)
	for _, supported := range SupportedBackends() {
		if b == supported {
			return b, nil
		}
	}
	return "", fmt.Errorf("unsupported storage backend: %s. Supported backends: %v", name, SupportedBackends())
}

// NewVoteRepository creates the vote store for the configured backend
func NewVoteRepository(cfg *config.Config) (VoteRepository, error) {
	backend, err := ValidateBackend(cfg.Storage.Backend)
	if err != nil {
		return nil, err
	}

	switch backend {
	case BackendPostgres:
		db, err := postgres.Connect(cfg)
		if err != nil {
			return nil, err
		}
		return postgres.NewVoteRepository(db), nil
	case BackendRedis:
		client, err := redis.Connect(cfg)
		if err != nil {
			return nil, err
		}
		return redis.NewVoteRepository(client), nil
	case BackendMemory:
		return memory.NewVoteRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", backend)
	}
}
