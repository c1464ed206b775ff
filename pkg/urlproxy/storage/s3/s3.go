package s3

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/tendant/url-proxy/pkg/urlproxy"
)

const defaultRegion = "us-east-1"

// zeroExpires stands in for a zero lifetime. The presign client treats a zero
// Expires as unset and falls back to 900s; anything below a second is signed
// as X-Amz-Expires=0.
const zeroExpires = time.Nanosecond

// Config options for the S3 backend
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)
	PresignDuration time.Duration // Lifetime of presigned URLs; whole seconds are signed
}

// Backend signs download URLs for objects in a single bucket.
// It is built once at startup and shared by all requests.
type Backend struct {
	client          *s3.Client
	presignClient   *s3.PresignClient
	bucket          string
	presignDuration time.Duration
}

var _ urlproxy.URLSigner = (*Backend)(nil)

// New creates a new S3 presigning backend
func New(config Config) (*Backend, error) {
	if config.Region == "" {
		config.Region = defaultRegion
	}

	if config.PresignDuration < 0 {
		return nil, fmt.Errorf("presign duration must be non-negative, got %s", config.PresignDuration)
	}

	var awsCfg aws.Config
	var err error

	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			)),
		)
	} else {
		// Use default credential chain
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
		)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)

	// Custom endpoint for S3-compatible services (MinIO, etc.)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Options...)

	return &Backend{
		client:          client,
		presignClient:   s3.NewPresignClient(client),
		bucket:          config.Bucket,
		presignDuration: config.PresignDuration,
	}, nil
}

// SignedGetURL returns a presigned URL for downloading an object.
// Errors reported by the object store are returned as *urlproxy.StorageError.
func (b *Backend) SignedGetURL(ctx context.Context, objectKey string) (string, error) {
	input := &s3.GetObjectInput{
		Key: aws.String(objectKey),
	}
	// An unset bucket is left nil so the SDK rejects it as an invalid parameter
	if b.bucket != "" {
		input.Bucket = aws.String(b.bucket)
	}

	expires := b.presignDuration
	if expires == 0 {
		expires = zeroExpires
	}

	result, err := b.presignClient.PresignGetObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return "", classifyError(objectKey, err)
	}

	return result.URL, nil
}

// classifyError separates errors reported by the service from everything else
func classifyError(objectKey string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &urlproxy.StorageError{
			Key:     objectKey,
			Code:    apiErr.ErrorCode(),
			Message: apiErr.ErrorMessage(),
			Err:     errors.Join(urlproxy.ErrSigningFailed, err),
		}
	}
	return fmt.Errorf("failed to generate presigned download URL: %w", err)
}
