package document

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/common/config"
	"go.uber.org/zap"
)

// ErrNotFound is returned by a Store for an unknown key
var ErrNotFound = errors.New("document not found")

// Store keeps rendered documents under slash separated keys
type Store interface {
	Put(ctx context.Context, key string, content io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// NewStore creates the store selected by cfg
func NewStore(ctx context.Context, logger *zap.Logger, cfg config.DocumentsConfig) (Store, error) {
	switch cfg.Store {
	case cnst.DocumentStoreDisk, "":
		return NewDiskStore(logger, cfg.Disk.Path)
	case cnst.DocumentStoreS3:
		return NewS3Store(ctx, logger, cfg.S3)
	}
	return nil, fmt.Errorf("unsupported document store: %s", cfg.Store)
}
