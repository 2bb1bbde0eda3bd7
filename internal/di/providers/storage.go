package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/custodylog/custodylog-server/internal/blob"
	"github.com/custodylog/custodylog-server/internal/config"
	"github.com/custodylog/custodylog-server/internal/logger"
)

// BlobStoreHandle wraps the photo blob store with shutdown capability.
type BlobStoreHandle struct {
	blob.Store
}

// Shutdown implements do.Shutdownable.
func (h *BlobStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideBlobStore provides the photo blob store selected by BLOB_BACKEND.
func ProvideBlobStore(i do.Injector) (*BlobStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	blobs, err := blob.Open(ctx, cfg.Blob, cfg.Storage.DataPath, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("photo storage: %w", err)
	}

	log.Info("Photo storage initialized", "backend", cfg.Blob.Backend)

	return &BlobStoreHandle{Store: blobs}, nil
}
