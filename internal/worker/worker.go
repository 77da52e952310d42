package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"filesend-bot/internal/domain/conversation"
	"filesend-bot/internal/infrastructure/metrics"
	"filesend-bot/internal/infrastructure/observability"
	"filesend-bot/internal/utils/platformerrors"
)

// Worker handles the events of the users sharded to it, one at a time.
type Worker struct {
	id          int
	handler     Handler
	jobs        chan conversation.Event
	taskTimeout time.Duration
	log         zerolog.Logger
	stopChan    chan struct{}
}

// NewWorker creates a worker with a queue of queueSize events.
func NewWorker(id int, handler Handler, queueSize int, taskTimeout time.Duration, log zerolog.Logger) *Worker {
	return &Worker{
		id:          id,
		handler:     handler,
		jobs:        make(chan conversation.Event, queueSize),
		taskTimeout: taskTimeout,
		log:         log.With().Int("worker_id", id).Str("component", "worker").Logger(),
		stopChan:    make(chan struct{}),
	}
}

// Start processes queued events until ctx is done or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	w.log.Debug().Msg("worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Debug().Int("dropped", len(w.jobs)).Msg("worker stopped by context")
			return
		case <-w.stopChan:
			w.log.Debug().Int("dropped", len(w.jobs)).Msg("worker stopped")
			return
		case ev := <-w.jobs:
			w.process(ctx, ev)
		}
	}
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	close(w.stopChan)
}

func (w *Worker) process(ctx context.Context, ev conversation.Event) {
	requestID := uuid.NewString()
	ctx = platformerrors.WithRequestID(ctx, requestID)
	if w.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.taskTimeout)
		defer cancel()
	}

	kind := ev.Kind.String()
	ctx, span := observability.StartSpan(ctx, "conversation.handle",
		attribute.Int64("telegram.user_id", ev.UserID),
		attribute.String("event.kind", kind),
		attribute.String("request_id", requestID),
	)
	defer span.End()

	start := time.Now()
	err := w.handle(ctx, ev)
	elapsed := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		observability.RecordError(ctx, err)
		platformerrors.LogError(w.log, err)
	}
	observability.AddSpanAttributes(ctx, attribute.String("update.status", status))
	metrics.RecordUpdate(kind, status, elapsed)

	w.log.Debug().
		Str("request_id", requestID).
		Str("trace_id", observability.GetTraceID(ctx)).
		Int64("telegram_id", ev.UserID).
		Str("kind", kind).
		Dur("elapsed", elapsed).
		Str("status", status).
		Msg("update handled")
}

// handle converts a handler panic into an error.
func (w *Worker) handle(ctx context.Context, ev conversation.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
				platformerrors.ErrorTypeInternal, "update handler panicked", fmt.Errorf("%v", r))
		}
	}()
	return w.handler.Handle(ctx, ev)
}
