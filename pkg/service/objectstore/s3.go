package objectstore

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-lookup/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/utils/safe"
)

// S3Config holds the S3 bucket location
type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string // Optional custom endpoint, e.g. MinIO or LocalStack
	Prefix   string
}

// S3Store reads objects with the AWS SDK
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

var _ interfaces.ObjectStore = &S3Store{}

// NewS3 creates an S3 store using the default AWS credential chain
func NewS3(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, goerr.Wrap(model.ErrConfig, "S3 bucket is required")
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load AWS config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Get reads s3://{bucket}/{prefix}{key}
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	objectKey := s.prefix + key

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get S3 object",
			goerr.V("bucket", s.bucket),
			goerr.V("key", objectKey))
	}
	defer safe.Close(ctx, out.Body)

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read S3 object",
			goerr.V("bucket", s.bucket),
			goerr.V("key", objectKey))
	}
	return body, nil
}
