package settings

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"filesend-bot/internal/utils/platformerrors"
)

// Service manages the file template and log settings. Missing rows are
// created on first access.
type Service interface {
	Template(ctx context.Context) (*FileTemplate, error)
	SetTemplate(ctx context.Context, template string) (*FileTemplate, error)
	LogSettings(ctx context.Context) (*LogSettings, error)
	ToggleRegistrations(ctx context.Context) (*LogSettings, error)
	ToggleUploads(ctx context.Context) (*LogSettings, error)
	SetLogChat(ctx context.Context, raw string) (*LogSettings, error)
}

type service struct {
	repo            Repository
	defaultTemplate string
	log             zerolog.Logger
}

// NewService wires the settings service with its repository.
func NewService(repo Repository, defaultTemplate string, log zerolog.Logger) Service {
	return &service{
		repo:            repo,
		defaultTemplate: defaultTemplate,
		log:             log.With().Str("component", "settings-service").Logger(),
	}
}

func (s *service) Template(ctx context.Context) (*FileTemplate, error) {
	tpl, err := s.repo.GetTemplate(ctx)
	if err == nil {
		return tpl, nil
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "load file template")
	}

	s.log.Info().Str("template", s.defaultTemplate).Msg("file template missing, creating default")
	tpl, err = s.repo.SaveTemplate(ctx, s.defaultTemplate)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create default file template")
	}
	return tpl, nil
}

func (s *service) SetTemplate(ctx context.Context, template string) (*FileTemplate, error) {
	template = strings.TrimSpace(template)
	if template == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"template must not be empty", nil)
	}
	tpl, err := s.repo.SaveTemplate(ctx, template)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "save file template")
	}
	s.log.Info().Str("template", template).Msg("file template updated")
	return tpl, nil
}

func (s *service) LogSettings(ctx context.Context) (*LogSettings, error) {
	ls, err := s.repo.GetLogSettings(ctx)
	if err == nil {
		return ls, nil
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "load log settings")
	}

	ls = &LogSettings{LogRegistrations: true, LogFileUploads: true}
	if err := s.repo.SaveLogSettings(ctx, ls); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create default log settings")
	}
	return ls, nil
}

func (s *service) ToggleRegistrations(ctx context.Context) (*LogSettings, error) {
	return s.update(ctx, func(ls *LogSettings) { ls.LogRegistrations = !ls.LogRegistrations })
}

func (s *service) ToggleUploads(ctx context.Context) (*LogSettings, error) {
	return s.update(ctx, func(ls *LogSettings) { ls.LogFileUploads = !ls.LogFileUploads })
}

// SetLogChat stores raw as the destination verbatim. The "clear" keyword,
// in any letter case, unsets it.
func (s *service) SetLogChat(ctx context.Context, raw string) (*LogSettings, error) {
	raw = strings.TrimSpace(raw)
	return s.update(ctx, func(ls *LogSettings) {
		if strings.EqualFold(raw, ClearKeyword) {
			ls.ChatID = ""
			return
		}
		ls.ChatID = raw
	})
}

func (s *service) update(ctx context.Context, mutate func(*LogSettings)) (*LogSettings, error) {
	ls, err := s.LogSettings(ctx)
	if err != nil {
		return nil, err
	}
	mutate(ls)
	if err := s.repo.SaveLogSettings(ctx, ls); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "save log settings")
	}
	s.log.Info().
		Str("chat_id", ls.ChatID).
		Bool("log_registrations", ls.LogRegistrations).
		Bool("log_file_uploads", ls.LogFileUploads).
		Msg("log settings updated")
	return ls, nil
}
