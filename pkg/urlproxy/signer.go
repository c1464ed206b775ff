// Package urlproxy turns tenant/object key requests into redirects to
// time-limited signed object store URLs.
package urlproxy

import "context"

// URLSigner mints a time-limited download URL for an object key.
//
// Implementations bind the bucket and expiration at construction time so the
// same signer can be shared by every request.
type URLSigner interface {
	SignedGetURL(ctx context.Context, objectKey string) (string, error)
}

// URLSignerFunc adapts a plain function to URLSigner
type URLSignerFunc func(ctx context.Context, objectKey string) (string, error)

func (f URLSignerFunc) SignedGetURL(ctx context.Context, objectKey string) (string, error) {
	return f(ctx, objectKey)
}
