package storage

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	domain "filesend-bot/internal/domain/storage"
	"filesend-bot/internal/infrastructure/metrics"
	"filesend-bot/internal/infrastructure/observability"
)

// instrumented records a span and metrics for every backend call.
type instrumented struct {
	next domain.Backend
}

// Instrument wraps backend with tracing and Prometheus metrics.
func Instrument(backend domain.Backend) domain.Backend {
	return &instrumented{next: backend}
}

func (i *instrumented) Name() string {
	return i.next.Name()
}

func (i *instrumented) Exists(ctx context.Context, remotePath string) (bool, error) {
	var exists bool
	err := i.observe(ctx, "exists", remotePath, func(ctx context.Context) error {
		var err error
		exists, err = i.next.Exists(ctx, remotePath)
		return err
	})
	return exists, err
}

func (i *instrumented) Mkdir(ctx context.Context, remotePath string) error {
	return i.observe(ctx, "mkdir", remotePath, func(ctx context.Context) error {
		return i.next.Mkdir(ctx, remotePath)
	})
}

func (i *instrumented) Upload(ctx context.Context, localPath, remotePath string, overwrite bool) error {
	return i.observe(ctx, "upload", remotePath, func(ctx context.Context) error {
		return i.next.Upload(ctx, localPath, remotePath, overwrite)
	}, attribute.Bool("storage.overwrite", overwrite))
}

func (i *instrumented) observe(ctx context.Context, op, remotePath string, call func(context.Context) error, attrs ...attribute.KeyValue) error {
	attrs = append(attrs,
		attribute.String("storage.backend", i.next.Name()),
		attribute.String("storage.path", remotePath),
	)
	ctx, span := observability.StartSpan(ctx, "storage."+op, attrs...)
	defer span.End()

	start := time.Now()
	err := call(ctx)
	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAlreadyExists):
		status = "exists"
	default:
		status = "error"
		observability.RecordError(ctx, err)
	}
	metrics.RecordStorageOperation(i.next.Name(), op, status, time.Since(start))
	return err
}
