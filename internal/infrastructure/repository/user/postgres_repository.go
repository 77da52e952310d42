package user

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "filesend-bot/internal/domain/user"
	"filesend-bot/internal/infrastructure/database/entities"
	"filesend-bot/internal/utils/platformerrors"
)

// PostgresRepository persists users via GORM.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a repository backed by the provided DB.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	record := entities.User{
		TelegramID: u.TelegramID,
		FullName:   u.FullName,
		IsAdmin:    u.IsAdmin,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
				"user already exists", err)
		}
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to create user", err)
	}
	*u = toDomain(record)
	return nil
}

func (r *PostgresRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	var record entities.User
	err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&record).Error
	if err != nil {
		return nil, r.lookupError(ctx, err, telegramID)
	}
	u := toDomain(record)
	return &u, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*domain.User, error) {
	var records []entities.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to list users", err)
	}
	result := make([]*domain.User, 0, len(records))
	for _, record := range records {
		u := toDomain(record)
		result = append(result, &u)
	}
	return result, nil
}

func (r *PostgresRepository) SetAdmin(ctx context.Context, telegramID int64, isAdmin bool) (*domain.User, error) {
	var record entities.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("telegram_id = ?", telegramID).First(&record).Error; err != nil {
			return err
		}
		record.IsAdmin = isAdmin
		return tx.Model(&record).Update("is_admin", isAdmin).Error
	})
	if err != nil {
		return nil, r.lookupError(ctx, err, telegramID)
	}
	u := toDomain(record)
	return &u, nil
}

func (r *PostgresRepository) PromoteIfNoAdmin(ctx context.Context, telegramID int64) (bool, error) {
	db := r.db.WithContext(ctx)
	admins := db.Session(&gorm.Session{NewDB: true}).
		Model(&entities.User{}).
		Select("1").
		Where("is_admin = ?", true)

	result := db.Model(&entities.User{}).
		Where("telegram_id = ?", telegramID).
		Where("NOT EXISTS (?)", admins).
		Update("is_admin", true)
	if result.Error != nil {
		return false, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to promote first admin", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *PostgresRepository) lookupError(ctx context.Context, err error, telegramID int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"user not found", err, map[string]any{"telegram_id": telegramID})
	}
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
		"failed to load user", err, map[string]any{"telegram_id": telegramID})
}

func toDomain(record entities.User) domain.User {
	return domain.User{
		ID:         record.ID,
		TelegramID: record.TelegramID,
		FullName:   record.FullName,
		IsAdmin:    record.IsAdmin,
		CreatedAt:  record.CreatedAt,
	}
}
