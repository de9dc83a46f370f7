package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/noah-isme/csr-compliance-api/pkg/config"
)

// ErrObjectNotFound is returned when a stored attachment is missing.
var ErrObjectNotFound = errors.New("storage: object not found")

// Object is an opened attachment. Callers must close Reader.
type Object struct {
	Reader      io.ReadCloser
	Size        int64
	ContentType string
}

// Backend is implemented by every attachment driver.
type Backend interface {
	SaveStream(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, name string) (*Object, error)
	Delete(ctx context.Context, name string) error
}

// New selects the driver named in cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	switch cfg.Driver {
	case "", config.StorageLocal:
		return NewLocalStorage(cfg.Dir)
	case config.StorageMinio:
		return NewMinioStorage(ctx, cfg.Minio)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
