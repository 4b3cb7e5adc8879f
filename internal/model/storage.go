package model

import (
	"context"
	"io"
)

// Storage is the object store registration export archives are written to.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
