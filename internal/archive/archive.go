// Package archive preserves aggregate snapshots in object storage before
// a reset wipes the vote store.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gravadigital/pulsepoll-api/internal/config"
	"github.com/gravadigital/pulsepoll-api/internal/domain/results"
	"github.com/gravadigital/pulsepoll-api/internal/logger"
)

// SnapshotArchiver uploads JSON aggregate snapshots to a MinIO bucket
type SnapshotArchiver struct {
	client *minio.Client
	bucket string
	log    *log.Logger
}

// snapshotDocument is the object body written per archive call
type snapshotDocument struct {
	ArchivedAt time.Time                  `json:"archived_at"`
	Results    []*results.AggregateResult `json:"results"`
}

// NewSnapshotArchiver connects to the configured object store and ensures
// the snapshot bucket exists.
func NewSnapshotArchiver(ctx context.Context, cfg *config.Config) (*SnapshotArchiver, error) {
	client, err := minio.New(cfg.Archive.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Archive.AccessKey, cfg.Archive.SecretKey, ""),
		Secure: cfg.Archive.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create archive client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Archive.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check archive bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Archive.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create archive bucket: %w", err)
		}
	}

	return &SnapshotArchiver{
		client: client,
		bucket: cfg.Archive.Bucket,
		log:    logger.Archive(),
	}, nil
}

// ArchiveSnapshot uploads the aggregates as one timestamped JSON object
func (a *SnapshotArchiver) ArchiveSnapshot(ctx context.Context, snapshots []*results.AggregateResult) error {
	doc := snapshotDocument{
		ArchivedAt: time.Now().UTC(),
		Results:    snapshots,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	objectName := "snapshots/" + doc.ArchivedAt.Format("20060102T150405Z") + ".json"
	_, err = a.client.PutObject(ctx, a.bucket, objectName, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot: %w", err)
	}

	a.log.Info("snapshot archived", "object", objectName, "polls", len(snapshots))
	return nil
}
