package s3

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/url-proxy/pkg/urlproxy"
)

func newTestBackend(t *testing.T, config Config) *Backend {
	t.Helper()
	if config.AccessKeyID == "" {
		config.AccessKeyID = "AKIDEXAMPLE"
		config.SecretAccessKey = "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY"
	}
	backend, err := New(config)
	require.NoError(t, err)
	return backend
}

func TestS3Backend_BasicConfiguration(t *testing.T) {
	t.Run("DefaultRegion", func(t *testing.T) {
		backend := newTestBackend(t, Config{Bucket: "test-bucket", PresignDuration: time.Minute})
		assert.Equal(t, "us-east-1", backend.client.Options().Region)
		assert.Equal(t, "test-bucket", backend.bucket)
	})

	t.Run("CustomPresignDuration", func(t *testing.T) {
		backend := newTestBackend(t, Config{Bucket: "test-bucket", PresignDuration: 2 * time.Hour})
		assert.Equal(t, 2*time.Hour, backend.presignDuration)
	})

	t.Run("NegativePresignDuration", func(t *testing.T) {
		_, err := New(Config{Bucket: "test-bucket", PresignDuration: -5 * time.Second})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "non-negative")
	})

	t.Run("CustomEndpoint", func(t *testing.T) {
		backend := newTestBackend(t, Config{
			Bucket:          "test-bucket",
			Endpoint:        "http://localhost:9000",
			UsePathStyle:    true,
			PresignDuration: time.Minute,
		})
		require.NotNil(t, backend.client.Options().BaseEndpoint)
		assert.Equal(t, "http://localhost:9000", *backend.client.Options().BaseEndpoint)
		assert.True(t, backend.client.Options().UsePathStyle)
	})
}

func TestS3Backend_SignedGetURL(t *testing.T) {
	ctx := context.Background()

	t.Run("ContainsKeyAndExpiration", func(t *testing.T) {
		backend := newTestBackend(t, Config{Bucket: "test-bucket", PresignDuration: 14400 * time.Second})

		signed, err := backend.SignedGetURL(ctx, "docs/report.pdf")
		require.NoError(t, err)

		u, err := url.Parse(signed)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(u.Path, "docs/report.pdf"), "path %q", u.Path)
		assert.Contains(t, u.Host, "test-bucket")
		assert.Equal(t, "14400", u.Query().Get("X-Amz-Expires"))
		assert.Equal(t, "AWS4-HMAC-SHA256", u.Query().Get("X-Amz-Algorithm"))
		assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
		assert.True(t, strings.HasPrefix(u.Query().Get("X-Amz-Credential"), "AKIDEXAMPLE/"))
	})

	t.Run("PathStyleEndpoint", func(t *testing.T) {
		backend := newTestBackend(t, Config{
			Bucket:          "test-bucket",
			Endpoint:        "http://localhost:9000",
			UsePathStyle:    true,
			PresignDuration: 5 * time.Minute,
		})

		signed, err := backend.SignedGetURL(ctx, "a/b.txt")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(signed, "http://localhost:9000/test-bucket/a/b.txt?"), signed)
		assert.Contains(t, signed, "X-Amz-Expires=300")
	})

	t.Run("ZeroExpiration", func(t *testing.T) {
		backend := newTestBackend(t, Config{Bucket: "test-bucket", PresignDuration: 0})

		signed, err := backend.SignedGetURL(ctx, "docs/report.pdf")
		require.NoError(t, err)

		u, err := url.Parse(signed)
		require.NoError(t, err)
		assert.Equal(t, "0", u.Query().Get("X-Amz-Expires"))
		assert.Equal(t, time.Duration(0), backend.presignDuration)
	})

	t.Run("EachCallSignsItsOwnKey", func(t *testing.T) {
		backend := newTestBackend(t, Config{Bucket: "test-bucket", PresignDuration: time.Minute})

		first, err := backend.SignedGetURL(ctx, "a/first.txt")
		require.NoError(t, err)
		second, err := backend.SignedGetURL(ctx, "b/second.txt")
		require.NoError(t, err)

		firstURL, err := url.Parse(first)
		require.NoError(t, err)
		secondURL, err := url.Parse(second)
		require.NoError(t, err)

		assert.True(t, strings.HasSuffix(firstURL.Path, "a/first.txt"), firstURL.Path)
		assert.True(t, strings.HasSuffix(secondURL.Path, "b/second.txt"), secondURL.Path)
		assert.NotEmpty(t, firstURL.Query().Get("X-Amz-Signature"))
		assert.NotEqual(t, firstURL.Query().Get("X-Amz-Signature"), secondURL.Query().Get("X-Amz-Signature"))
	})

	t.Run("MissingBucketIsNotAStorageError", func(t *testing.T) {
		backend := newTestBackend(t, Config{PresignDuration: time.Minute})

		_, err := backend.SignedGetURL(ctx, "docs/report.pdf")
		require.Error(t, err)
		_, ok := urlproxy.AsStorageError(err)
		assert.False(t, ok)
	})
}

func TestClassifyError(t *testing.T) {
	t.Run("APIError", func(t *testing.T) {
		apiErr := &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"}
		wrapped := &smithy.OperationError{ServiceID: "S3", OperationName: "GetObject", Err: apiErr}

		err := classifyError("docs/report.pdf", wrapped)

		storageErr, ok := urlproxy.AsStorageError(err)
		require.True(t, ok)
		assert.Equal(t, "AccessDenied", storageErr.Code)
		assert.Equal(t, "Access Denied", storageErr.Message)
		assert.Equal(t, "docs/report.pdf", storageErr.Key)
		assert.True(t, errors.Is(err, urlproxy.ErrSigningFailed))
		assert.True(t, errors.Is(err, apiErr))
	})

	t.Run("OtherError", func(t *testing.T) {
		cause := fmt.Errorf("endpoint resolution failed")

		err := classifyError("docs/report.pdf", cause)

		_, ok := urlproxy.AsStorageError(err)
		assert.False(t, ok)
		assert.True(t, errors.Is(err, cause))
		assert.Contains(t, err.Error(), "failed to generate presigned download URL")
	})
}
