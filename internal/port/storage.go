package port

import (
	"context"
	"io"
)

// StoredObject is an object fetched from storage. Body must be closed.
type StoredObject struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// ObjectSource abstracts read access to cloud object storage.
type ObjectSource interface {
	Open(ctx context.Context, bucket, key string) (*StoredObject, error)
}
