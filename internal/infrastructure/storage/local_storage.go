package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	domain "filesend-bot/internal/domain/storage"
)

// LocalStorage keeps the folder tree under a directory on the local disk.
type LocalStorage struct {
	basePath string
	log      zerolog.Logger
}

// NewLocalStorage creates the base directory when missing.
func NewLocalStorage(basePath string, log zerolog.Logger) (*LocalStorage, error) {
	logger := log.With().Str("component", "local-storage").Logger()

	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("LOCAL_STORAGE_PATH is required for the local storage backend")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory: %w", err)
	}

	logger.Info().Str("path", basePath).Msg("local storage initialized")
	return &LocalStorage{basePath: basePath, log: logger}, nil
}

func (l *LocalStorage) Name() string {
	return "local"
}

func (l *LocalStorage) Exists(_ context.Context, remotePath string) (bool, error) {
	_, err := os.Stat(l.resolve(remotePath))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", remotePath, err)
}

func (l *LocalStorage) Mkdir(_ context.Context, remotePath string) error {
	err := os.Mkdir(l.resolve(remotePath), 0o755)
	if errors.Is(err, fs.ErrExist) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

func (l *LocalStorage) Upload(_ context.Context, localPath, remotePath string, overwrite bool) error {
	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open upload source: %w", err)
	}
	defer src.Close()

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	dst, err := os.OpenFile(l.resolve(remotePath), flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	l.log.Debug().Str("path", remotePath).Int64("bytes", written).Msg("file stored")
	return nil
}

func (l *LocalStorage) resolve(remotePath string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(domain.Clean(remotePath)))
}
