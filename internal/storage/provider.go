package storage

import (
	"context"
)

type Object struct {
	Name string
	Size int64
}

// Provider is the read side of an object store holding model artifacts.
// Object names are full keys relative to the bucket.
type Provider interface {
	DownloadObject(ctx context.Context, bucket, key, filename string) error

	ListObjects(ctx context.Context, bucket, prefix string) ([]Object, error)
}
