package main

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"filesend-bot/internal/infrastructure/crontab"
	"filesend-bot/internal/infrastructure/telegram"
	"filesend-bot/internal/interfaces/httpserver"
	"filesend-bot/internal/worker"
)

type Application struct {
	httpServer *httpserver.HttpServer
	pool       *worker.Pool
	poller     *telegram.Poller
	crontab    *crontab.Crontab
	log        zerolog.Logger
}

func NewApplication(
	httpServer *httpserver.HttpServer,
	pool *worker.Pool,
	poller *telegram.Poller,
	cron *crontab.Crontab,
	log zerolog.Logger,
) *Application {
	return &Application{
		httpServer: httpServer,
		pool:       pool,
		poller:     poller,
		crontab:    cron,
		log:        log,
	}
}

// Start runs every component until ctx is cancelled or one of them fails.
// Workers are stopped only once the poller has returned.
func (a *Application) Start(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	a.pool.Start(context.WithoutCancel(ctx))

	eg.Go(func() error {
		return a.httpServer.Run(ctx)
	})
	eg.Go(func() error {
		return a.crontab.Run(ctx)
	})
	eg.Go(func() error {
		err := a.poller.Run(ctx)
		a.pool.Stop()
		return err
	})

	a.log.Info().Msg("bot started")
	return eg.Wait()
}
