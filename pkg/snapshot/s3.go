package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// S3Client defines the S3 operations used by S3Sink.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config contains configuration for the S3 sink.
type S3Config struct {
	Bucket         string `env:"SNAPSHOT_S3_BUCKET"`
	Region         string `env:"SNAPSHOT_S3_REGION"`
	AccessKeyID    string `env:"SNAPSHOT_S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"SNAPSHOT_S3_SECRET_KEY"`
	Endpoint       string `env:"SNAPSHOT_S3_ENDPOINT"` // Optional: for S3-compatible services
	Prefix         string `env:"SNAPSHOT_S3_PREFIX" envDefault:"snapshots"`
	ForcePathStyle bool   `env:"SNAPSHOT_S3_FORCE_PATH_STYLE"` // For S3-compatible services like MinIO
}

// LoadS3Config reads the given .env files and parses SNAPSHOT_S3_* variables.
// Bucket and region are required.
func LoadS3Config(files ...string) (S3Config, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return S3Config{}, errors.Join(ErrInvalidConfig, err)
		}
	}

	var cfg S3Config
	if err := env.Parse(&cfg); err != nil {
		return S3Config{}, errors.Join(ErrInvalidConfig, err)
	}
	if cfg.Bucket == "" || cfg.Region == "" {
		return S3Config{}, fmt.Errorf("%w: bucket and region are required", ErrInvalidConfig)
	}
	return cfg, nil
}

// S3Option configures S3Sink.
type S3Option func(*s3Options)

type s3Options struct {
	httpClient      *http.Client
	s3Client        S3Client
	s3ConfigOptions []func(*config.LoadOptions) error
	s3ClientOptions []func(*s3.Options)
	uploadTimeout   time.Duration
	now             func() time.Time
}

// WithS3Client sets a custom pre-configured S3 client.
// Useful for testing with mocks.
func WithS3Client(client S3Client) S3Option {
	return func(o *s3Options) {
		o.s3Client = client
	}
}

// WithHTTPClient sets a custom HTTP client for S3 requests.
func WithHTTPClient(client *http.Client) S3Option {
	return func(o *s3Options) {
		o.httpClient = client
	}
}

// WithS3ConfigOption adds a custom AWS config option.
func WithS3ConfigOption(option func(*config.LoadOptions) error) S3Option {
	return func(o *s3Options) {
		o.s3ConfigOptions = append(o.s3ConfigOptions, option)
	}
}

// WithS3ClientOption adds a custom S3 client option.
func WithS3ClientOption(option func(*s3.Options)) S3Option {
	return func(o *s3Options) {
		o.s3ClientOptions = append(o.s3ClientOptions, option)
	}
}

// WithUploadTimeout bounds each upload. Without it the caller's deadline applies.
func WithUploadTimeout(timeout time.Duration) S3Option {
	return func(o *s3Options) {
		o.uploadTimeout = timeout
	}
}

// WithClock overrides the time source used in object keys.
func WithClock(now func() time.Time) S3Option {
	return func(o *s3Options) {
		if now != nil {
			o.now = now
		}
	}
}

// S3Sink uploads snapshots to a bucket. It is safe for concurrent use.
type S3Sink struct {
	client        S3Client
	bucket        string
	prefix        string
	uploadTimeout time.Duration
	now           func() time.Time
}

// NewS3Sink creates an S3 sink. A client passed with WithS3Client is used as
// is; otherwise one is built from cfg and the default AWS credential chain.
func NewS3Sink(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3Sink, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}

	options := &s3Options{now: time.Now}
	for _, opt := range opts {
		opt(options)
	}

	client := options.s3Client
	if client == nil {
		awsOptions := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretKey,
					"",
				)),
			)
		}
		if options.httpClient != nil {
			awsOptions = append(awsOptions, config.WithHTTPClient(options.httpClient))
		}
		awsOptions = append(awsOptions, options.s3ConfigOptions...)

		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToLoadConfig, err)
		}

		client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			o.UsePathStyle = cfg.ForcePathStyle
			for _, opt := range options.s3ClientOptions {
				opt(o)
			}
		})
	}

	return &S3Sink{
		client:        client,
		bucket:        cfg.Bucket,
		prefix:        strings.Trim(cfg.Prefix, "/"),
		uploadTimeout: options.uploadTimeout,
		now:           options.now,
	}, nil
}

// Put uploads body under a fresh key and returns its s3:// location.
func (s *S3Sink) Put(ctx context.Context, index string, body io.Reader, size int64) (string, error) {
	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}

	key := s.key(index)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String("application/x-ndjson"),
	})
	if err != nil {
		return "", s.classifyError(err)
	}
	return "s3://" + s.bucket + "/" + key, nil
}

// key builds <prefix>/<index>/<UTC timestamp>-<uuid>.ndjson.
func (s *S3Sink) key(index string) string {
	name := fmt.Sprintf("%s-%s.ndjson", s.now().UTC().Format("20060102T150405Z"), uuid.NewString())
	return path.Join(s.prefix, index, name)
}

func (s *S3Sink) classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errors.Join(ErrWriteFailed, err)
	}

	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return ErrBucketNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch code := apiErr.ErrorCode(); code {
		case "AccessDenied":
			return fmt.Errorf("%w: upload to %s", ErrAccessDenied, s.bucket)
		case "SlowDown", "ServiceUnavailable":
			return fmt.Errorf("%w: upload to %s", ErrServiceUnavailable, s.bucket)
		case "NoSuchBucket":
			return ErrBucketNotFound
		default:
			return fmt.Errorf("%w (code: %s): %w", ErrWriteFailed, code, err)
		}
	}

	return errors.Join(ErrWriteFailed, err)
}
