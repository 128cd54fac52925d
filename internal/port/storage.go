package port

import (
	"context"
	"io"
)

// PutInput encapsulates the parameters needed to store an object.
type PutInput struct {
	Key         string
	Body        io.Reader
	ContentType string
}

// ObjectStorage abstracts where validated documents and their verdict
// JSON are archived.
type ObjectStorage interface {
	Put(ctx context.Context, input PutInput) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
