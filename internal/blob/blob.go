// Package blob stores photo bytes under opaque keys.
//
// Keys look like "<user>/<entry>/<millis>_<name>". Every backend treats them as
// flat object names; the filesystem backend maps the slashes to directories.
package blob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/custodylog/custodylog-server/internal/config"
)

// ErrNotFound is returned by Get for keys that were never written.
var ErrNotFound = errors.New("blob not found")

// ErrInvalidKey rejects empty keys and keys that try to leave their prefix.
var ErrInvalidKey = errors.New("invalid blob key")

// Store is the blob collaborator. Put must be durable when it returns nil.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open builds the backend selected in cfg. Local backends live under dataPath.
func Open(ctx context.Context, cfg config.BlobConfig, dataPath string, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case config.BlobFilesystem, "":
		return NewFileStore(filepath.Join(dataPath, "photos"))
	case config.BlobBadger:
		return OpenBadgerStore(filepath.Join(dataPath, "photos.badger"), logger)
	case config.BlobMinio:
		return NewMinioStore(ctx, MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
			Bucket:    cfg.Bucket,
		}, logger)
	case config.BlobS3:
		return NewS3Store(ctx, cfg.Bucket, cfg.S3Region)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}

func checkKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
