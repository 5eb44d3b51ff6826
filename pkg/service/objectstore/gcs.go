package objectstore

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-lookup/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/utils/safe"
	"google.golang.org/api/option"
)

// GCSConfig holds the Cloud Storage bucket location
type GCSConfig struct {
	Bucket string
	Prefix string

	// Anonymous skips credential lookup for public buckets
	Anonymous bool
}

// GCSStore reads objects from Google Cloud Storage
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ interfaces.ObjectStore = &GCSStore{}

// NewGCS creates a GCS store using Application Default Credentials unless
// cfg.Anonymous is set. Extra client options are passed through.
func NewGCS(ctx context.Context, cfg GCSConfig, opts ...option.ClientOption) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, goerr.Wrap(model.ErrConfig, "GCS bucket is required")
	}

	if cfg.Anonymous {
		opts = append(opts, option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GCS client")
	}

	return &GCSStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Get reads gs://{bucket}/{prefix}{key}
func (s *GCSStore) Get(ctx context.Context, key string) ([]byte, error) {
	objectPath := s.prefix + key

	r, err := s.client.Bucket(s.bucket).Object(objectPath).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(err, "GCS object not found",
				goerr.V("bucket", s.bucket),
				goerr.V("object", objectPath))
		}
		return nil, goerr.Wrap(err, "failed to open GCS object",
			goerr.V("bucket", s.bucket),
			goerr.V("object", objectPath))
	}
	defer safe.Close(ctx, r)

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read GCS object",
			goerr.V("bucket", s.bucket),
			goerr.V("object", objectPath))
	}
	return body, nil
}

// Close releases the underlying client
func (s *GCSStore) Close() error {
	return s.client.Close()
}
