package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"filesend-bot/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes and seeds the singleton rows.
func AutoMigrate(ctx context.Context, db *gorm.DB, defaultTemplate string, log zerolog.Logger) error {
	tx := db.WithContext(ctx)
	if err := tx.AutoMigrate(
		&entities.User{},
		&entities.FileTemplate{},
		&entities.LogSettings{},
		&entities.UploadedFile{},
	); err != nil {
		return err
	}

	if err := seedTemplate(tx, defaultTemplate, log); err != nil {
		return err
	}
	return seedLogSettings(tx, log)
}

func seedTemplate(tx *gorm.DB, defaultTemplate string, log zerolog.Logger) error {
	var count int64
	if err := tx.Model(&entities.FileTemplate{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Debug().Int64("rows", count).Msg("file template already seeded")
		return nil
	}

	row := entities.FileTemplate{Template: defaultTemplate}
	if err := tx.Create(&row).Error; err != nil {
		return err
	}
	log.Info().Str("template", row.Template).Msg("seeded default file template")
	return nil
}

func seedLogSettings(tx *gorm.DB, log zerolog.Logger) error {
	var count int64
	if err := tx.Model(&entities.LogSettings{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Debug().Int64("rows", count).Msg("log settings already seeded")
		return nil
	}

	row := entities.LogSettings{LogRegistrations: true, LogFileUploads: true}
	if err := tx.Create(&row).Error; err != nil {
		return err
	}
	log.Info().Msg("seeded default log settings")
	return nil
}
