package storage

import (
	"context"
	"io"
)

// ObjectStore is the contract the pipeline needs from an S3-compatible
// store: a bucket that exists, is publicly readable, and accepts byte
// uploads addressed by key. PutObject returns the public URL of the
// stored object.
type ObjectStore interface {
	EnsureBucket(ctx context.Context, bucket string) error

	SetPublicRead(ctx context.Context, bucket string) error

	PutObject(ctx context.Context, bucket, key string, data io.Reader, contentType string) (string, error)

	BucketURL(bucket string) string
}
