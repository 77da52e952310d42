package settings

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "filesend-bot/internal/domain/settings"
	"filesend-bot/internal/infrastructure/database/entities"
	"filesend-bot/internal/utils/platformerrors"
)

// PostgresRepository stores the singleton template and log settings rows.
// The row with the lowest id is the live one.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a repository backed by the provided DB.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetTemplate(ctx context.Context) (*domain.FileTemplate, error) {
	var record entities.FileTemplate
	if err := r.db.WithContext(ctx).Order("id ASC").First(&record).Error; err != nil {
		return nil, r.wrap(ctx, err, "failed to load file template")
	}
	return &domain.FileTemplate{Template: record.Template, UpdatedAt: record.UpdatedAt}, nil
}

func (r *PostgresRepository) SaveTemplate(ctx context.Context, template string) (*domain.FileTemplate, error) {
	var record entities.FileTemplate
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Order("id ASC").First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			record = entities.FileTemplate{Template: template}
			return tx.Create(&record).Error
		}
		if err != nil {
			return err
		}
		record.Template = template
		return tx.Save(&record).Error
	})
	if err != nil {
		return nil, r.wrap(ctx, err, "failed to save file template")
	}
	return &domain.FileTemplate{Template: record.Template, UpdatedAt: record.UpdatedAt}, nil
}

func (r *PostgresRepository) GetLogSettings(ctx context.Context) (*domain.LogSettings, error) {
	var record entities.LogSettings
	if err := r.db.WithContext(ctx).Order("id ASC").First(&record).Error; err != nil {
		return nil, r.wrap(ctx, err, "failed to load log settings")
	}
	return toDomainLogSettings(record), nil
}

func (r *PostgresRepository) SaveLogSettings(ctx context.Context, s *domain.LogSettings) error {
	var chatID *string
	if s.ChatID != "" {
		value := s.ChatID
		chatID = &value
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record entities.LogSettings
		err := tx.Order("id ASC").First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// a map keeps false booleans instead of falling back to the column default
			return tx.Model(&entities.LogSettings{}).Create(map[string]any{
				"log_chat_id":       chatID,
				"log_registrations": s.LogRegistrations,
				"log_file_uploads":  s.LogFileUploads,
			}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&record).Updates(map[string]any{
			"log_chat_id":       chatID,
			"log_registrations": s.LogRegistrations,
			"log_file_uploads":  s.LogFileUploads,
		}).Error
	})
	if err != nil {
		return r.wrap(ctx, err, "failed to save log settings")
	}
	return nil
}

func (r *PostgresRepository) wrap(ctx context.Context, err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, message, err)
	}
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, message, err)
}

func toDomainLogSettings(record entities.LogSettings) *domain.LogSettings {
	ls := &domain.LogSettings{
		LogRegistrations: record.LogRegistrations,
		LogFileUploads:   record.LogFileUploads,
	}
	if record.LogChatID != nil {
		ls.ChatID = *record.LogChatID
	}
	return ls
}
