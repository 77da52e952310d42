// Package storage provides the remote folder backends: Yandex Disk, S3 and
// the local filesystem.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"filesend-bot/internal/config"
	domain "filesend-bot/internal/domain/storage"
)

// New builds the backend selected by STORAGE_BACKEND, instrumented.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.Backend, error) {
	var (
		backend domain.Backend
		err     error
	)
	switch cfg.StorageBackend {
	case config.StorageBackendYandexDisk:
		backend = NewYandexDiskStorage(cfg.YandexDiskURL, cfg.YandexDiskToken, cfg.DownloadTimeout, log)
	case config.StorageBackendS3:
		backend, err = NewS3Storage(ctx, cfg, log)
	case config.StorageBackendLocal:
		backend, err = NewLocalStorage(cfg.LocalStoragePath, log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
	if err != nil {
		return nil, err
	}

	log.Info().Str("backend", backend.Name()).Str("root", cfg.StorageRoot).Msg("remote storage ready")
	return Instrument(backend), nil
}
