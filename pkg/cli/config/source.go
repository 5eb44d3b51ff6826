package config

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-lookup/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/domain/types"
	"github.com/secmon-lab/grc-lookup/pkg/service/csvsource"
	"github.com/secmon-lab/grc-lookup/pkg/service/objectstore"
	"github.com/secmon-lab/grc-lookup/pkg/service/tablesource"
	"github.com/secmon-lab/grc-lookup/pkg/utils/logging"
	"github.com/secmon-lab/grc-lookup/pkg/utils/retry"
	"github.com/secmon-lab/grc-lookup/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

const contentDir = "content"

// Source holds CLI flags for where requirement rows and content pages come
// from
type Source struct {
	kind    string
	backend string

	bucketURL string
	cdnURL    string

	s3Bucket   string
	s3Region   string
	s3Endpoint string
	s3Prefix   string

	gcsBucket    string
	gcsPrefix    string
	gcsAnonymous bool

	tableAPIBase string

	retryAttempts int
	retryDelay    time.Duration
	cacheTimeout  time.Duration
}

// Flags returns CLI flags for source configuration
func (x *Source) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "source",
			Usage:       "Requirement source (csv, table)",
			Value:       string(types.SourceKindCSV),
			Category:    "Source",
			Sources:     cli.EnvVars(EnvPrefix + "_SOURCE"),
			Destination: &x.kind,
		},
		&cli.StringFlag{
			Name:        "store",
			Usage:       "Object store backend for CSV and content files (http, s3, gcs)",
			Value:       string(types.StoreBackendHTTP),
			Category:    "Source",
			Sources:     cli.EnvVars(EnvPrefix + "_STORE"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "bucket-url",
			Usage:       "Public bucket URL for the http store",
			Value:       objectstore.DefaultBucketURL,
			Category:    "Source",
			Sources:     cli.EnvVars(EnvPrefix + "_BUCKET_URL"),
			Destination: &x.bucketURL,
		},
		&cli.StringFlag{
			Name:        "cdn-url",
			Usage:       "CDN URL used instead of the bucket URL for CSV files",
			Category:    "Source",
			Sources:     cli.EnvVars(EnvPrefix + "_CDN_URL"),
			Destination: &x.cdnURL,
		},
		&cli.StringFlag{
			Name:        "s3-bucket",
			Usage:       "S3 bucket name (required for the s3 store)",
			Category:    "Source",
			Sources:     cli.EnvVars(EnvPrefix + "_S3_BUCKET"),
			Destination: &x.s3Bucket,
		},
		&cli.StringFlag{
			Name:        "s3-region",
			Usage:       "S3 region",
			Category:    "Source",
			Sources:     cli.EnvVars(EnvPrefix+"_S3_REGION", "AWS_REGION"),
			Destination: &x.s3Region,
		},
		&cli.StringFlag{
			Name:        "s3-endpoint",
			Usage:       "Custom S3 endpoint, e.g. for MinIO",
			Category:    "Source",
			Sources:     cli.EnvVars(EnvPrefix + "_S3_ENDPOINT"),
			Destination: &x.s3Endpoint,
		},
		&cli.StringFlag{
			Name:        "s3-prefix",
			Usage:       "Object key prefix in the S3 bucket",
			Category:    "Source",
			Sources:     cli.EnvVars(EnvPrefix + "_S3_PREFIX"),
			Destination: &x.s3Prefix,
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket name (required for the gcs store)",
			Category:    "Source",
			Sources:     cli.EnvVars(EnvPrefix + "_GCS_BUCKET"),
			Destination: &x.gcsBucket,
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix in the Cloud Storage bucket",
			Category:    "Source",
			Sources:     cli.EnvVars(EnvPrefix + "_GCS_PREFIX"),
			Destination: &x.gcsPrefix,
		},
		&cli.BoolFlag{
			Name:        "gcs-anonymous",
			Usage:       "Access the Cloud Storage bucket without credentials",
			Category:    "Source",
			Sources:     cli.EnvVars(EnvPrefix + "_GCS_ANONYMOUS"),
			Destination: &x.gcsAnonymous,
		},
		&cli.StringFlag{
			Name:        "table-api-base",
			Usage:       "Base URL of the tabular-record API",
			Value:       tablesource.DefaultAPIBase,
			Category:    "Source",
			Sources:     cli.EnvVars(EnvPrefix + "_TABLE_API_BASE"),
			Destination: &x.tableAPIBase,
		},
		&cli.IntFlag{
			Name:        "retry-attempts",
			Usage:       "Fetch attempts per request",
			Value:       retry.DefaultPolicy.Attempts,
			Category:    "Source",
			Sources:     cli.EnvVars(EnvPrefix + "_RETRY_ATTEMPTS"),
			Destination: &x.retryAttempts,
		},
		&cli.DurationFlag{
			Name:        "retry-delay",
			Usage:       "Base delay between fetch attempts, multiplied by the attempt number",
			Value:       retry.DefaultPolicy.BaseDelay,
			Category:    "Source",
			Sources:     cli.EnvVars(EnvPrefix + "_RETRY_DELAY"),
			Destination: &x.retryDelay,
		},
		&cli.DurationFlag{
			Name:        "cache-timeout",
			Usage:       "Freshness window of cached requirements",
			Value:       model.DefaultCacheTimeout,
			Category:    "Source",
			Sources:     cli.EnvVars(EnvPrefix + "_CACHE_TIMEOUT"),
			Destination: &x.cacheTimeout,
		},
	}
}

// LogValue implements slog.LogValuer
func (x Source) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("source", x.kind),
		slog.String("store", x.backend),
		slog.String("bucket_url", x.bucketURL),
		slog.String("cdn_url", x.cdnURL),
		slog.String("s3_bucket", x.s3Bucket),
		slog.String("gcs_bucket", x.gcsBucket),
		slog.Int("retry_attempts", x.retryAttempts),
		slog.Duration("cache_timeout", x.cacheTimeout),
	)
}

// CacheTimeout returns the configured cache freshness window
func (x *Source) CacheTimeout() time.Duration {
	if x.cacheTimeout <= 0 {
		return model.DefaultCacheTimeout
	}
	return x.cacheTimeout
}

// RetryPolicy returns the fetch retry policy shared by both sources
func (x *Source) RetryPolicy() retry.Policy {
	p := retry.DefaultPolicy
	if x.retryAttempts > 0 {
		p.Attempts = x.retryAttempts
	}
	if x.retryDelay > 0 {
		p.BaseDelay = x.retryDelay
	}
	return p
}

// Configure builds the requirement source. The returned function releases
// store clients and must be called when the source is no longer used.
func (x *Source) Configure(ctx context.Context, registry *model.JurisdictionRegistry) (interfaces.RequirementSource, func(), error) {
	kind := types.SourceKind(x.kind)
	if err := kind.Validate(); err != nil {
		return nil, nil, goerr.Wrap(ErrInvalidConfig, "invalid --source", goerr.V("source", x.kind))
	}

	switch kind {
	case types.SourceKindTable:
		logging.Default().Info("Using tabular-record source", "api_base", x.tableAPIBase)
		src := tablesource.New(registry,
			tablesource.WithAPIBase(x.tableAPIBase),
			tablesource.WithRetryPolicy(x.RetryPolicy()),
		)
		return src, func() {}, nil

	default:
		baseURL := x.bucketURL
		if x.cdnURL != "" {
			baseURL = x.cdnURL
		}
		store, closer, err := x.openStore(ctx, baseURL, "",
			objectstore.WithHeader("Accept", "text/csv"),
			objectstore.WithHeader("Cache-Control", "max-age=300"),
		)
		if err != nil {
			return nil, nil, err
		}
		logging.Default().Info("Using CSV source", "store", x.backend)
		return csvsource.New(registry, store, csvsource.WithRetryPolicy(x.RetryPolicy())), closer, nil
	}
}

// ContentStore builds the object store holding markdown content pages
func (x *Source) ContentStore(ctx context.Context) (interfaces.ObjectStore, func(), error) {
	return x.openStore(ctx, strings.TrimRight(x.bucketURL, "/")+"/"+contentDir, contentDir+"/",
		objectstore.WithHeader("Cache-Control", "no-cache"),
	)
}

func (x *Source) openStore(ctx context.Context, httpURL, subPrefix string, httpOpts ...objectstore.HTTPOption) (interfaces.ObjectStore, func(), error) {
	backend := types.StoreBackend(x.backend)
	if err := backend.Validate(); err != nil {
		return nil, nil, goerr.Wrap(ErrInvalidConfig, "invalid --store", goerr.V(BackendKey, x.backend))
	}

	switch backend {
	case types.StoreBackendS3:
		store, err := objectstore.NewS3(ctx, objectstore.S3Config{
			Bucket:   x.s3Bucket,
			Region:   x.s3Region,
			Endpoint: x.s3Endpoint,
			Prefix:   x.s3Prefix + subPrefix,
		})
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize S3 store", goerr.V(BackendKey, x.backend))
		}
		return store, func() {}, nil

	case types.StoreBackendGCS:
		store, err := objectstore.NewGCS(ctx, objectstore.GCSConfig{
			Bucket:    x.gcsBucket,
			Prefix:    x.gcsPrefix + subPrefix,
			Anonymous: x.gcsAnonymous,
		})
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize GCS store", goerr.V(BackendKey, x.backend))
		}
		return store, func() { safe.Close(ctx, store) }, nil

	default:
		store, err := objectstore.NewHTTP(httpURL, httpOpts...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize HTTP store", goerr.V(BackendKey, x.backend))
		}
		return store, func() {}, nil
	}
}
