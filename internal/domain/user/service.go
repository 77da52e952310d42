package user

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"filesend-bot/internal/utils/platformerrors"
)

// Service describes the business logic surface for user operations.
type Service interface {
	Get(ctx context.Context, telegramID int64) (*User, error)
	Register(ctx context.Context, telegramID int64, fullName string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	SetAdmin(ctx context.Context, telegramID int64, isAdmin bool) (*User, error)
	ClaimFirstAdmin(ctx context.Context, telegramID int64) (BootstrapResult, error)
}

type service struct {
	repo Repository
	log  zerolog.Logger
}

// NewService wires the user service with its repository.
func NewService(repo Repository, log zerolog.Logger) Service {
	return &service{
		repo: repo,
		log:  log.With().Str("component", "user-service").Logger(),
	}
}

// ValidateFullName collapses whitespace in fullName and requires at least two
// tokens.
func ValidateFullName(ctx context.Context, fullName string) (string, error) {
	fields := strings.Fields(fullName)
	if len(fields) < 2 {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"full name needs at least a first and a last name", nil)
	}
	return strings.Join(fields, " "), nil
}

func (s *service) Get(ctx context.Context, telegramID int64) (*User, error) {
	u, err := s.repo.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "get user")
	}
	return u, nil
}

func (s *service) Register(ctx context.Context, telegramID int64, fullName string) (*User, error) {
	name, err := ValidateFullName(ctx, fullName)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByTelegramID(ctx, telegramID)
	if err == nil && existing != nil {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
			"user already registered", nil, map[string]any{"telegram_id": telegramID})
	}
	if err != nil && !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "check existing user")
	}

	u := &User{TelegramID: telegramID, FullName: name}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "register user")
	}
	s.log.Info().Int64("telegram_id", telegramID).Str("full_name", name).Msg("user registered")
	return u, nil
}

func (s *service) List(ctx context.Context) ([]*User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list users")
	}
	return users, nil
}

func (s *service) SetAdmin(ctx context.Context, telegramID int64, isAdmin bool) (*User, error) {
	u, err := s.repo.SetAdmin(ctx, telegramID, isAdmin)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "set admin flag")
	}
	s.log.Info().Int64("telegram_id", telegramID).Bool("is_admin", isAdmin).Msg("admin flag changed")
	return u, nil
}

func (s *service) ClaimFirstAdmin(ctx context.Context, telegramID int64) (BootstrapResult, error) {
	if _, err := s.repo.FindByTelegramID(ctx, telegramID); err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return BootstrapNotRegistered, nil
		}
		return 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "claim first admin")
	}

	granted, err := s.repo.PromoteIfNoAdmin(ctx, telegramID)
	if err != nil {
		return 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "claim first admin")
	}
	if !granted {
		return BootstrapAdminExists, nil
	}
	s.log.Warn().Int64("telegram_id", telegramID).Msg("first admin granted")
	return BootstrapGranted, nil
}
