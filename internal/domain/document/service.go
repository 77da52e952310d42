package document

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"filesend-bot/internal/domain/similarity"
	"filesend-bot/internal/utils/fileid"
	"filesend-bot/internal/utils/platformerrors"
)

// Storage is the retrying remote store used for delivery.
type Storage interface {
	EnsureFolders(ctx context.Context, dirs ...string) error
	Exists(ctx context.Context, remotePath string) (bool, error)
	Upload(ctx context.Context, localPath, remotePath string, overwrite bool) error
}

// Checker compares essay text against stored essays.
type Checker interface {
	Check(ctx context.Context, candidate string, corpus []similarity.Document) []similarity.Match
}

// Service runs the document intake pipeline: folders, naming, decoding,
// similarity, upload and persistence.
type Service struct {
	repo    Repository
	storage Storage
	checker Checker
	root    string
	log     zerolog.Logger
}

// NewService wires the intake pipeline. root is the top level remote folder.
func NewService(repo Repository, storage Storage, checker Checker, root string, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		storage: storage,
		checker: checker,
		root:    root,
		log:     log.With().Str("component", "document-service").Logger(),
	}
}

// EnsureUserFolder creates the root folder and the user's folder.
func (s *Service) EnsureUserFolder(ctx context.Context, fullName string) error {
	return s.storage.EnsureFolders(ctx, s.root, UserFolder(s.root, fullName))
}

// PlanTarget computes where the upload goes, makes sure its folders exist and
// reports whether a file is already stored there.
func (s *Service) PlanTarget(ctx context.Context, template string, owner Owner, t FileType, originalName string) (Target, bool, error) {
	target := NewTarget(s.root, template, owner.FullName, t, originalName)
	if err := s.storage.EnsureFolders(ctx, s.root, target.Folder); err != nil {
		return Target{}, false, err
	}
	exists, err := s.storage.Exists(ctx, target.Path)
	if err != nil {
		return Target{}, false, err
	}
	return target, exists, nil
}

// Store decodes the scratch file, checks essays for similarity, uploads it
// and records it. Nothing is persisted when the upload fails.
func (s *Service) Store(ctx context.Context, p StoreParams) (*StoreResult, error) {
	data, err := os.ReadFile(p.ScratchPath)
	if err != nil {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"read scratch file", err, map[string]any{"scratch_path": p.ScratchPath})
	}

	content, encodingName := Decode(data)
	log := s.log.With().
		Int64("telegram_id", p.Owner.TelegramID).
		Str("path", p.Target.Path).
		Str("file_type", string(p.Type)).
		Logger()
	log.Debug().Str("encoding", encodingName).Int("bytes", len(data)).Msg("decoded upload")

	result := &StoreResult{Replaced: p.Replace}
	if p.Type == TypeEssay && Comparable(content) {
		result.Matches = s.compare(ctx, p.Owner, content)
	}

	if err := s.storage.Upload(ctx, p.ScratchPath, p.Target.Path, p.Replace); err != nil {
		return nil, err
	}

	file, err := s.persist(ctx, p, content)
	if err != nil {
		return nil, err
	}
	result.File = file

	log.Info().
		Bool("replaced", p.Replace).
		Int("similar", len(result.Matches)).
		Msg("document stored")
	return result, nil
}

func (s *Service) compare(ctx context.Context, owner Owner, content string) []similarity.Match {
	stored, err := s.repo.ListByType(ctx, TypeEssay, owner.ID)
	if err != nil {
		platformerrors.LogError(s.log, err)
		s.log.Warn().Msg("similarity check skipped, stored essays unavailable")
		return nil
	}

	corpus := make([]similarity.Document, 0, len(stored))
	for _, f := range stored {
		if !Comparable(f.Content) {
			continue
		}
		corpus = append(corpus, similarity.Document{
			FileName:        f.FileName,
			OwnerName:       f.OwnerName,
			OwnerTelegramID: f.OwnerTelegramID,
			Content:         f.Content,
		})
	}
	return s.checker.Check(ctx, content, corpus)
}

func (s *Service) persist(ctx context.Context, p StoreParams, content string) (*UploadedFile, error) {
	if p.Replace {
		existing, err := s.repo.FindByRemotePath(ctx, p.Target.Path)
		switch {
		case err == nil:
			if err := s.repo.UpdateContent(ctx, existing.ID, content, p.Target.Path); err != nil {
				return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "update stored document")
			}
			existing.Content = content
			existing.RemotePath = p.Target.Path
			return existing, nil
		case !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound):
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "find stored document")
		}
		// the remote file predates the database row, record it as new
	}

	file := &UploadedFile{
		PublicID:   fileid.New(),
		UserID:     p.Owner.ID,
		FileName:   p.Target.Name,
		FileType:   p.Type,
		Content:    content,
		RemotePath: p.Target.Path,
	}
	if err := s.repo.Create(ctx, file); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "record document")
	}
	return file, nil
}
