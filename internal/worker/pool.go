// Package worker runs conversation events on a fixed set of goroutines,
// sharded by user so each user's events are handled in arrival order.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"filesend-bot/internal/domain/conversation"
)

// ErrNotRunning is returned by Submit before Start and after Stop.
var ErrNotRunning = errors.New("worker pool is not running")

// Handler processes a single event.
type Handler interface {
	Handle(ctx context.Context, ev conversation.Event) error
}

// Pool manages the sharded workers.
type Pool struct {
	workers     []*Worker
	handler     Handler
	workerCount int
	queueSize   int
	taskTimeout time.Duration
	stopTimeout time.Duration
	log         zerolog.Logger
	wg          sync.WaitGroup
	stopOnce    sync.Once
	stopChan    chan struct{}
}

// Config contains worker pool configuration.
type Config struct {
	WorkerCount int
	QueueSize   int
	TaskTimeout time.Duration
	StopTimeout time.Duration
}

// NewPool creates a new worker pool.
func NewPool(handler Handler, cfg Config, log zerolog.Logger) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 30 * time.Second
	}
	return &Pool{
		handler:     handler,
		workerCount: cfg.WorkerCount,
		queueSize:   cfg.QueueSize,
		taskTimeout: cfg.TaskTimeout,
		stopTimeout: cfg.StopTimeout,
		log:         log.With().Str("component", "worker-pool").Logger(),
		stopChan:    make(chan struct{}),
	}
}

// Start launches all workers. Events run with contexts derived from ctx.
func (p *Pool) Start(ctx context.Context) {
	p.log.Info().Int("worker_count", p.workerCount).Int("queue_size", p.queueSize).Msg("starting worker pool")

	p.workers = make([]*Worker, p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		w := NewWorker(i+1, p.handler, p.queueSize, p.taskTimeout, p.log)
		p.workers[i] = w

		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w.Start(ctx)
		}()
	}
}

// Submit queues ev on the worker that owns its user. It blocks while that
// worker's queue is full.
func (p *Pool) Submit(ctx context.Context, ev conversation.Event) error {
	if len(p.workers) == 0 {
		return ErrNotRunning
	}
	select {
	case <-p.stopChan:
		return ErrNotRunning
	default:
	}

	w := p.workers[shard(ev.UserID, len(p.workers))]
	select {
	case w.jobs <- ev:
		return nil
	case <-p.stopChan:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

func shard(userID int64, n int) int {
	return int(uint64(userID) % uint64(n))
}

// Stop signals every worker and waits for in-flight events to finish.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.log.Info().Msg("stopping worker pool")
		close(p.stopChan)
		for _, w := range p.workers {
			w.Stop()
		}

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			p.log.Info().Msg("all workers stopped gracefully")
		case <-time.After(p.stopTimeout):
			p.log.Warn().Msg("worker pool shutdown timed out")
		}
	})
}
