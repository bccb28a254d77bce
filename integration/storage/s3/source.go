package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/catb00mer/fluffer/core/static"
)

var _ static.Source = (*Source)(nil)

// Client defines the S3 operations used by Source.
type Client interface {
	GetObject(ctx context.Context, params *s3aws.GetObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.GetObjectOutput, error)
}

// Config contains configuration for a bucket-backed Source.
type Config struct {
	Bucket         string `env:"S3_BUCKET"`
	Region         string `env:"S3_REGION" envDefault:"us-east-1"`
	AccessKeyID    string `env:"S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"S3_SECRET_ACCESS_KEY"`
	Endpoint       string `env:"S3_ENDPOINT"`    // For S3-compatible services like MinIO
	Prefix         string `env:"S3_PREFIX"`      // Key prefix prepended to every asset name
	ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE"`
	// HTTPTimeout bounds each S3 request. Zero keeps the SDK default.
	HTTPTimeout time.Duration `env:"S3_HTTP_TIMEOUT" envDefault:"30s"`
}

// Source serves capsule assets from an S3 bucket.
type Source struct {
	client Client
	bucket string
	prefix string
}

// Option configures New.
type Option func(*options)

type options struct {
	httpTimeout     time.Duration
	client          Client
	configOptions   []func(*config.LoadOptions) error
	s3ClientOptions []func(*s3aws.Options)
}

// WithClient sets a pre-configured client. Primarily used for testing.
func WithClient(client Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithHTTPTimeout overrides Config.HTTPTimeout.
func WithHTTPTimeout(d time.Duration) Option {
	return func(o *options) {
		o.httpTimeout = d
	}
}

// WithConfigOption adds a custom AWS config option.
func WithConfigOption(option func(*config.LoadOptions) error) Option {
	return func(o *options) {
		o.configOptions = append(o.configOptions, option)
	}
}

// WithS3ClientOption adds a custom S3 client option.
func WithS3ClientOption(option func(*s3aws.Options)) Option {
	return func(o *options) {
		o.s3ClientOptions = append(o.s3ClientOptions, option)
	}
}

// New creates a Source reading from cfg.Bucket.
func New(ctx context.Context, cfg Config, opts ...Option) (*Source, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, fmt.Errorf("%w: bucket and region are required", ErrInvalidConfig)
	}

	o := &options{httpTimeout: cfg.HTTPTimeout}
	for _, opt := range opts {
		opt(o)
	}

	client := o.client
	if client == nil {
		awsOptions := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.Region),
		}
		// static credentials when given, IAM roles and env vars otherwise
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretKey,
					"",
				)),
			)
		}
		// the buildable client keeps AWS_CA_BUNDLE working
		if o.httpTimeout > 0 {
			awsOptions = append(awsOptions, config.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(o.httpTimeout)))
		}
		awsOptions = append(awsOptions, o.configOptions...)

		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, errors.Join(ErrLoadConfig, err)
		}

		client = s3aws.NewFromConfig(awsConfig, func(so *s3aws.Options) {
			if cfg.Endpoint != "" {
				so.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			so.UsePathStyle = cfg.ForcePathStyle
			for _, opt := range o.s3ClientOptions {
				opt(so)
			}
		})
	}

	return &Source{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Open implements static.Source. The object's Content-Type wins over the
// extension guess unless it is empty or a generic binary type.
func (s *Source) Open(ctx context.Context, name string) (static.Asset, error) {
	clean := static.Sanitize(name)
	if clean == "" {
		return static.Asset{}, fmt.Errorf("%w: %q", static.ErrNotFound, name)
	}

	key := clean
	if s.prefix != "" {
		key = path.Join(s.prefix, clean)
	}

	out, err := s.client.GetObject(ctx, &s3aws.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return static.Asset{}, classifyError(err, key)
	}
	defer out.Body.Close()

	mimeType := aws.ToString(out.ContentType)
	if mimeType == "" || mimeType == "binary/octet-stream" || mimeType == "application/octet-stream" {
		mimeType = static.GuessMIME(clean)
	}
	if mimeType == "" {
		return static.Asset{}, fmt.Errorf("%w: %q", static.ErrUnknownMIME, clean)
	}

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return static.Asset{}, errors.Join(static.ErrRead, err)
	}

	return static.Asset{Name: clean, MIME: mimeType, Body: body}, nil
}
