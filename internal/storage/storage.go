// Package storage puts trash photos into an object store and resolves their
// public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/gcclean/trash-service/internal/config"
)

var ErrExists = errors.New("object already exists")

type Store interface {
	Put(ctx context.Context, path string, data []byte, overwrite bool) error
	PublicURL(path string) string
	Delete(ctx context.Context, path string) error
}

// New returns the driver selected by configuration.
func New(cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case config.StorageDriverLocal:
		return NewLocal(cfg.LocalDir, cfg.PublicBaseURL)
	case config.StorageDriverCloudinary:
		return NewCloudinary(cfg.Cloudinary)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
