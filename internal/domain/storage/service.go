package storage

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"filesend-bot/internal/domain/retry"
	"filesend-bot/internal/utils/platformerrors"
)

// Service applies the retry budget to every backend call.
type Service struct {
	backend Backend
	policy  retry.Policy
	log     zerolog.Logger
}

// NewService wraps backend with policy.
func NewService(backend Backend, policy retry.Policy, log zerolog.Logger) *Service {
	return &Service{
		backend: backend,
		policy:  policy,
		log:     log.With().Str("component", "storage-service").Str("backend", backend.Name()).Logger(),
	}
}

// EnsureFolders creates every ancestor of each directory, root first. Existing
// directories are left alone.
func (s *Service) EnsureFolders(ctx context.Context, dirs ...string) error {
	seen := make(map[string]struct{})
	for _, dir := range dirs {
		for _, p := range Ancestors(dir) {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			if err := s.ensureFolder(ctx, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) ensureFolder(ctx context.Context, dir string) error {
	err := s.executor("mkdir", dir).Execute(ctx, func(ctx context.Context, attempt int) error {
		exists, err := s.backend.Exists(ctx, dir)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		err = s.backend.Mkdir(ctx, dir)
		if errors.Is(err, ErrAlreadyExists) {
			return nil
		}
		return err
	})
	if err != nil {
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			"create remote folder", err, map[string]any{"path": dir, "attempts": s.policy.Attempts()})
	}
	return nil
}

// Exists reports whether remotePath is present.
func (s *Service) Exists(ctx context.Context, remotePath string) (bool, error) {
	exists, err := retry.ExecuteWithResult(ctx, s.policy, func(ctx context.Context, attempt int) (bool, error) {
		return s.backend.Exists(ctx, remotePath)
	})
	if err != nil {
		return false, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			"check remote path", err, map[string]any{"path": remotePath})
	}
	return exists, nil
}

// Upload sends localPath to remotePath. ErrAlreadyExists is not retried.
func (s *Service) Upload(ctx context.Context, localPath, remotePath string, overwrite bool) error {
	err := s.executor("upload", remotePath).Execute(ctx, func(ctx context.Context, attempt int) error {
		err := s.backend.Upload(ctx, localPath, remotePath, overwrite)
		if errors.Is(err, ErrAlreadyExists) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		errorType := platformerrors.ErrorTypeExternal
		if errors.Is(err, ErrAlreadyExists) {
			errorType = platformerrors.ErrorTypeConflict
		}
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, errorType,
			"upload file", err, map[string]any{"path": remotePath, "overwrite": overwrite})
	}
	s.log.Info().Str("path", remotePath).Bool("overwrite", overwrite).Msg("file uploaded")
	return nil
}

func (s *Service) executor(op, remotePath string) *retry.Executor {
	return retry.NewExecutor(s.policy).OnRetry(func(attempt int, err error) {
		s.log.Warn().Err(err).
			Str("op", op).
			Str("path", remotePath).
			Int("attempt", attempt).
			Msg("remote storage call failed, retrying")
	})
}
