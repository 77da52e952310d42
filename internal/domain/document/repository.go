package document

import "context"

// Repository persists uploaded files.
type Repository interface {
	Create(ctx context.Context, f *UploadedFile) error
	FindByRemotePath(ctx context.Context, remotePath string) (*UploadedFile, error)
	UpdateContent(ctx context.Context, id uint, content, remotePath string) error
	// ListByType returns files of type t not owned by excludeUserID, with
	// owner details populated.
	ListByType(ctx context.Context, t FileType, excludeUserID uint) ([]*UploadedFile, error)
}
