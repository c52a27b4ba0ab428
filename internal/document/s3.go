package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/harambee/studentliving/internal/common/config"
	"go.uber.org/zap"
)

// S3Store implements Store on an S3 compatible bucket (AWS S3 or MinIO)
type S3Store struct {
	logger *zap.Logger
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store creates an S3 store. Static credentials are used when configured,
// the default AWS credential chain otherwise.
func NewS3Store(ctx context.Context, logger *zap.Logger, cfg config.S3StorageConfig) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3StoreWithClient(logger, client, cfg.Bucket, cfg.Prefix), nil
}

func newS3StoreWithClient(logger *zap.Logger, client *s3.Client, bucket, prefix string) *S3Store {
	return &S3Store{logger: logger, client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Store) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

// Put uploads content. Non seekable readers are buffered so the payload can be signed.
func (s *S3Store) Put(ctx context.Context, key string, content io.Reader, contentType string) error {
	body, ok := content.(io.ReadSeeker)
	if !ok {
		b, err := io.ReadAll(content)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, s.objectKey(key), err)
	}
	s.logger.Debug("stored document", zap.String("bucket", s.bucket), zap.String("key", s.objectKey(key)))
	return nil
}

func (s *S3Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var (
			nsk    *types.NoSuchKey
			status interface{ HTTPStatusCode() int }
		)
		if errors.As(err, &nsk) || (errors.As(err, &status) && status.HTTPStatusCode() == http.StatusNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return out.Body, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	return err
}
