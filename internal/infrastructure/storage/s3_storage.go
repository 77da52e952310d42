package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"filesend-bot/internal/config"
	domain "filesend-bot/internal/domain/storage"
)

// S3Storage maps the folder tree onto an S3-compatible bucket. Folders are
// zero-byte objects whose key ends with a slash.
type S3Storage struct {
	bucket string
	client *s3.Client
	log    zerolog.Logger
}

func NewS3Storage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*S3Storage, error) {
	bucket := strings.TrimSpace(cfg.S3Bucket)
	if bucket == "" {
		return nil, errors.New("S3_BUCKET is required for the s3 storage backend")
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.S3Endpoint != "" {
			return aws.Endpoint{
				URL:           cfg.S3Endpoint,
				PartitionID:   "aws",
				SigningRegion: cfg.S3Region,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	return &S3Storage{
		bucket: bucket,
		client: client,
		log:    log.With().Str("component", "s3-storage").Str("bucket", bucket).Logger(),
	}, nil
}

func (s *S3Storage) Name() string {
	return "s3"
}

// Exists reports whether an object or a folder marker lives at remotePath.
func (s *S3Storage) Exists(ctx context.Context, remotePath string) (bool, error) {
	key := objectKey(remotePath)
	found, err := s.head(ctx, key)
	if err != nil || found {
		return found, err
	}
	return s.head(ctx, key+"/")
}

func (s *S3Storage) Mkdir(ctx context.Context, remotePath string) error {
	marker := objectKey(remotePath) + "/"
	exists, err := s.head(ctx, marker)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrAlreadyExists
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(marker),
		Body:        strings.NewReader(""),
		ContentType: aws.String("application/x-directory"),
	})
	if err != nil {
		return fmt.Errorf("create folder marker %s: %w", marker, err)
	}
	return nil
}

func (s *S3Storage) Upload(ctx context.Context, localPath, remotePath string, overwrite bool) error {
	key := objectKey(remotePath)
	if !overwrite {
		exists, err := s.head(ctx, key)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrAlreadyExists
		}
	}

	mtype, err := mimetype.DetectFile(localPath)
	if err != nil {
		return fmt.Errorf("detect content type: %w", err)
	}
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open upload source: %w", err)
	}
	defer file.Close()

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(mtype.String()),
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	s.log.Debug().Str("key", key).Str("content_type", mtype.String()).Msg("object uploaded")
	return nil
}

func (s *S3Storage) head(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("head object %s: %w", key, err)
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404
}

func objectKey(remotePath string) string {
	return strings.TrimPrefix(domain.Clean(remotePath), "/")
}
