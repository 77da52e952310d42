//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"filesend-bot/internal/config"
	"filesend-bot/internal/infrastructure/telegram"
	"filesend-bot/internal/interfaces/httpserver"
)

var serviceSet = wire.NewSet(
	newDatabaseConfig,
	newGormDB,
	newUserService,
	newSettingsService,
	newStorageService,
	newSimilarityChecker,
	newDocumentService,
	newSessionStore,
)

var botSet = wire.NewSet(
	telegram.NewBotAPI,
	newTelegramClient,
	newRelay,
	newEngine,
	newWorkerPool,
	newPoller,
	newCrontab,
)

// BuildApplication assembles the bot with Wire.
func BuildApplication(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Application, func(), error) {
	wire.Build(
		serviceSet,
		botSet,
		newReadinessChecks,
		httpserver.New,
		NewApplication,
	)
	return nil, nil, nil
}
