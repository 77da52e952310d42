package main

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"filesend-bot/internal/config"
	"filesend-bot/internal/domain/conversation"
	"filesend-bot/internal/domain/document"
	"filesend-bot/internal/domain/notify"
	"filesend-bot/internal/domain/retry"
	"filesend-bot/internal/domain/settings"
	"filesend-bot/internal/domain/similarity"
	domainstorage "filesend-bot/internal/domain/storage"
	"filesend-bot/internal/domain/user"
	"filesend-bot/internal/infrastructure/crontab"
	"filesend-bot/internal/infrastructure/database"
	"filesend-bot/internal/infrastructure/metrics"
	documentrepo "filesend-bot/internal/infrastructure/repository/document"
	settingsrepo "filesend-bot/internal/infrastructure/repository/settings"
	userrepo "filesend-bot/internal/infrastructure/repository/user"
	"filesend-bot/internal/infrastructure/sessionstore"
	"filesend-bot/internal/infrastructure/storage"
	"filesend-bot/internal/infrastructure/telegram"
	"filesend-bot/internal/interfaces/httpserver"
	"filesend-bot/internal/worker"
)

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	}
}

// newGormDB connects, migrates and seeds the database.
func newGormDB(ctx context.Context, dbCfg database.Config, cfg *config.Config, log zerolog.Logger) (*gorm.DB, func(), error) {
	db, err := database.Connect(ctx, dbCfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}
	if err := database.AutoMigrate(ctx, db, cfg.DefaultFileTemplate, log); err != nil {
		cleanup()
		return nil, nil, err
	}
	return db, cleanup, nil
}

func newUserService(db *gorm.DB, log zerolog.Logger) user.Service {
	return user.NewService(userrepo.NewPostgresRepository(db), log)
}

func newSettingsService(db *gorm.DB, cfg *config.Config, log zerolog.Logger) settings.Service {
	return settings.NewService(settingsrepo.NewPostgresRepository(db), cfg.DefaultFileTemplate, log)
}

func newStorageService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*domainstorage.Service, error) {
	backend, err := storage.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	policy := retry.FixedPolicy(cfg.StorageRetryAttempts, cfg.StorageRetryDelay)
	return domainstorage.NewService(backend, policy, log), nil
}

func newSimilarityChecker(cfg *config.Config, log zerolog.Logger) *similarity.Checker {
	return similarity.NewChecker(similarity.Config{
		Threshold: cfg.SimilarityThreshold,
		Timeout:   cfg.SimilarityTimeout,
	}, metrics.RecordSimilarity, log)
}

func newDocumentService(db *gorm.DB, store *domainstorage.Service, checker *similarity.Checker, cfg *config.Config, log zerolog.Logger) *document.Service {
	return document.NewService(documentrepo.NewPostgresRepository(db), store, checker, cfg.StorageRoot, log)
}

func newSessionStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (conversation.SessionStore, func(), error) {
	store, closeStore, err := sessionstore.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := closeStore(); err != nil {
			log.Error().Err(err).Msg("close session store")
		}
	}, nil
}

func newTelegramClient(bot *tgbotapi.BotAPI, cfg *config.Config, log zerolog.Logger) *telegram.Client {
	return telegram.NewClient(bot, cfg.DownloadTimeout, log)
}

func newRelay(settingsService settings.Service, client *telegram.Client, log zerolog.Logger) *notify.Relay {
	return notify.NewRelay(settingsService, client, metrics.RecordRelaySend, log)
}

func newEngine(
	users user.Service,
	settingsService settings.Service,
	documents *document.Service,
	relay *notify.Relay,
	sessions conversation.SessionStore,
	client *telegram.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *conversation.Engine {
	return conversation.NewEngine(conversation.Deps{
		Users:      users,
		Settings:   settingsService,
		Documents:  documents,
		Notifier:   relay,
		Sessions:   sessions,
		Messenger:  client,
		Downloader: client,
		ScratchDir: cfg.ScratchDir,
		OnUpload:   metrics.RecordUpload,
	}, log)
}

func newWorkerPool(engine *conversation.Engine, cfg *config.Config, log zerolog.Logger) *worker.Pool {
	return worker.NewPool(engine, worker.Config{
		WorkerCount: cfg.WorkerCount,
		QueueSize:   cfg.WorkerQueueSize,
		TaskTimeout: cfg.UpdateTimeout,
		StopTimeout: cfg.ShutdownTimeout,
	}, log)
}

func newPoller(bot *tgbotapi.BotAPI, client *telegram.Client, pool *worker.Pool, cfg *config.Config, log zerolog.Logger) *telegram.Poller {
	return telegram.NewPoller(bot, client, pool, cfg.TelegramPollTimeout, log)
}

func newCrontab(engine *conversation.Engine, sessions conversation.SessionStore, cfg *config.Config, log zerolog.Logger) *crontab.Crontab {
	// only the in-process store needs purging, redis expires keys itself
	purger, _ := sessions.(crontab.Purger)
	return crontab.NewCrontab(engine.ScratchDir(), cfg.ScratchTTL, cfg.ScratchSweepIntervalMinutes, purger, log)
}

func newReadinessChecks(db *gorm.DB, sessions conversation.SessionStore) map[string]httpserver.ReadinessCheck {
	checks := map[string]httpserver.ReadinessCheck{
		"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
	}
	if hc, ok := sessions.(interface{ HealthCheck(context.Context) error }); ok {
		checks["sessions"] = hc.HealthCheck
	}
	return checks
}

// assembleApplication wires the application by hand. wire.go describes the
// same graph for the wire generator.
func assembleApplication(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Application, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*Application, func(), error) {
		cleanup()
		return nil, nil, err
	}

	db, closeDB, err := newGormDB(ctx, newDatabaseConfig(cfg), cfg, log)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeDB)

	store, err := newStorageService(ctx, cfg, log)
	if err != nil {
		return fail(err)
	}

	sessions, closeSessions, err := newSessionStore(ctx, cfg, log)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeSessions)

	bot, err := telegram.NewBotAPI(cfg, log)
	if err != nil {
		return fail(err)
	}

	users := newUserService(db, log)
	settingsService := newSettingsService(db, cfg, log)
	documents := newDocumentService(db, store, newSimilarityChecker(cfg, log), cfg, log)
	client := newTelegramClient(bot, cfg, log)
	engine := newEngine(users, settingsService, documents, newRelay(settingsService, client, log), sessions, client, cfg, log)
	pool := newWorkerPool(engine, cfg, log)

	app := NewApplication(
		httpserver.New(cfg, newReadinessChecks(db, sessions), log),
		pool,
		newPoller(bot, client, pool, cfg, log),
		newCrontab(engine, sessions, cfg, log),
		log,
	)
	return app, cleanup, nil
}
