package user

import "context"

// Repository exposes data access for User records.
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByTelegramID(ctx context.Context, telegramID int64) (*User, error)
	List(ctx context.Context) ([]*User, error)
	SetAdmin(ctx context.Context, telegramID int64, isAdmin bool) (*User, error)
	// PromoteIfNoAdmin grants admin to telegramID in a single guarded
	// statement. It reports false when an admin already exists.
	PromoteIfNoAdmin(ctx context.Context, telegramID int64) (bool, error)
}
