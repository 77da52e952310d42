package settings

import "context"

// Repository persists the singleton configuration rows. Both getters return
// a NOT_FOUND platform error when the row has not been created yet.
type Repository interface {
	GetTemplate(ctx context.Context) (*FileTemplate, error)
	SaveTemplate(ctx context.Context, template string) (*FileTemplate, error)
	GetLogSettings(ctx context.Context) (*LogSettings, error)
	SaveLogSettings(ctx context.Context, s *LogSettings) error
}
