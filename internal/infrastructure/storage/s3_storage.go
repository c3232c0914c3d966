// Package storage reads the report's record stores from S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/erp/salesreport/internal/domain/report"
	infraconfig "github.com/erp/salesreport/internal/infrastructure/config"
	"github.com/erp/salesreport/internal/infrastructure/csvstore"
	"go.uber.org/zap"
)

// Ensure S3RowSource implements report.RowSource
var _ report.RowSource = (*S3RowSource)(nil)

// objectAPI is the subset of the S3 client the row source uses
type objectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3RowSource reads each entity's rows from the object <prefix>/<store name>.csv.
// It is compatible with any S3-compatible storage (AWS S3, RustFS, MinIO, etc.)
type S3RowSource struct {
	client        objectAPI
	bucket        string
	prefix        string
	parserOptions []csvstore.ParserOption
	logger        *zap.Logger
}

// S3RowSourceOption is a functional option for configuring S3RowSource
type S3RowSourceOption func(*S3RowSource)

// WithLogger sets a custom logger for S3RowSource
func WithLogger(logger *zap.Logger) S3RowSourceOption {
	return func(s *S3RowSource) {
		s.logger = logger
	}
}

// WithParserOptions sets the options store objects are parsed with
func WithParserOptions(opts ...csvstore.ParserOption) S3RowSourceOption {
	return func(s *S3RowSource) {
		s.parserOptions = append(s.parserOptions, opts...)
	}
}

// NewS3RowSource creates a new S3RowSource from configuration
func NewS3RowSource(cfg *infraconfig.StorageConfig, opts ...S3RowSourceOption) (*S3RowSource, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if endpoint != "" {
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	// Static credentials when given, otherwise the default AWS credential chain
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, errors.New("storage access key and secret key must be set together")
		}
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return newS3RowSource(client, cfg.Bucket, cfg.Prefix, opts...), nil
}

func newS3RowSource(client objectAPI, bucket, prefix string, opts ...S3RowSourceOption) *S3RowSource {
	s := &S3RowSource{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the object key backing entity
func (s *S3RowSource) Key(entity report.EntityType) string {
	return path.Join(s.prefix, entity.StoreName()+csvstore.FileExt)
}

// ReadAll downloads and parses the store object of entity. A missing object
// fails with report.ErrStoreNotFound.
func (s *S3RowSource) ReadAll(ctx context.Context, entity report.EntityType) ([]report.Row, error) {
	key := s.Key(entity)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", report.ErrStoreNotFound, s.bucket, key)
		}
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer out.Body.Close()

	rows, err := csvstore.ParseRows(out.Body, s.parserOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse object %s: %w", key, err)
	}

	s.logger.Debug("Store object read",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("rows", len(rows)),
	)
	return rows, nil
}

// Upload stores a store file under the key of entity
func (s *S3RowSource) Upload(ctx context.Context, entity report.EntityType, data []byte) error {
	key := s.Key(entity)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	s.logger.Info("Store object uploaded",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// Check verifies that the bucket is reachable
func (s *S3RowSource) Check(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to reach bucket %s: %w", s.bucket, err)
	}
	return nil
}

// GetBucket returns the bucket name
func (s *S3RowSource) GetBucket() string {
	return s.bucket
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return true
	}
	// Some S3-compatible services report the code only in the message
	return strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "NoSuchKey")
}
