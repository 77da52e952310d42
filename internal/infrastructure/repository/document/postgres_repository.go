package document

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "filesend-bot/internal/domain/document"
	"filesend-bot/internal/infrastructure/database/entities"
	"filesend-bot/internal/utils/platformerrors"
)

// PostgresRepository persists uploaded files via GORM.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a repository backed by the provided DB.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, f *domain.UploadedFile) error {
	record := entities.UploadedFile{
		PublicID:   f.PublicID,
		UserID:     f.UserID,
		FileName:   f.FileName,
		FileType:   string(f.FileType),
		Content:    f.Content,
		RemotePath: f.RemotePath,
	}
	if err := r.db.WithContext(ctx).Omit("User").Create(&record).Error; err != nil {
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to create uploaded file", err, map[string]any{"remote_path": f.RemotePath})
	}
	f.ID = record.ID
	f.CreatedAt = record.CreatedAt
	f.UpdatedAt = record.UpdatedAt
	return nil
}

func (r *PostgresRepository) FindByRemotePath(ctx context.Context, remotePath string) (*domain.UploadedFile, error) {
	var record entities.UploadedFile
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("remote_path = ?", remotePath).
		Order("id DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
				"uploaded file not found", err, map[string]any{"remote_path": remotePath})
		}
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to find uploaded file", err, map[string]any{"remote_path": remotePath})
	}
	return toDomain(record), nil
}

func (r *PostgresRepository) UpdateContent(ctx context.Context, id uint, content, remotePath string) error {
	result := r.db.WithContext(ctx).
		Model(&entities.UploadedFile{ID: id}).
		Updates(map[string]any{
			"content":     content,
			"remote_path": remotePath,
		})
	if result.Error != nil {
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to update uploaded file", result.Error, map[string]any{"id": id})
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"uploaded file not found", nil, map[string]any{"id": id})
	}
	return nil
}

func (r *PostgresRepository) ListByType(ctx context.Context, t domain.FileType, excludeUserID uint) ([]*domain.UploadedFile, error) {
	var records []entities.UploadedFile
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("file_type = ? AND user_id <> ?", string(t), excludeUserID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to list uploaded files", err, map[string]any{"file_type": string(t)})
	}

	result := make([]*domain.UploadedFile, 0, len(records))
	for _, record := range records {
		result = append(result, toDomain(record))
	}
	return result, nil
}

func toDomain(record entities.UploadedFile) *domain.UploadedFile {
	return &domain.UploadedFile{
		ID:              record.ID,
		PublicID:        record.PublicID,
		UserID:          record.UserID,
		OwnerName:       record.User.FullName,
		OwnerTelegramID: record.User.TelegramID,
		FileName:        record.FileName,
		FileType:        domain.FileType(record.FileType),
		Content:         record.Content,
		RemotePath:      record.RemotePath,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}
