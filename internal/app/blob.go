package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/heartmarshall/eduprompt-backend/internal/adapter/blob"
	"github.com/heartmarshall/eduprompt-backend/internal/adapter/blob/fsstore"
	"github.com/heartmarshall/eduprompt-backend/internal/adapter/blob/memstore"
	"github.com/heartmarshall/eduprompt-backend/internal/adapter/blob/s3store"
	"github.com/heartmarshall/eduprompt-backend/internal/config"
)

// NewBlobStore creates the snapshot store selected by cfg.Driver.
func NewBlobStore(ctx context.Context, cfg config.BlobConfig) (blob.Store, error) {
	switch blob.Driver(strings.ToLower(cfg.Driver)) {
	case blob.DriverFS:
		store, err := fsstore.New(cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return store, nil
	case blob.DriverS3:
		store, err := s3store.New(ctx, s3store.Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			UsePathStyle:    cfg.S3UsePathStyle,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case blob.DriverMemory:
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}
