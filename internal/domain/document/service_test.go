package document_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filesend-bot/internal/domain/document"
	"filesend-bot/internal/domain/similarity"
	"filesend-bot/internal/domain/storage"
	"filesend-bot/internal/domain/user"
	"filesend-bot/internal/infrastructure/database/databasetest"
	docrepo "filesend-bot/internal/infrastructure/repository/document"
	userrepo "filesend-bot/internal/infrastructure/repository/user"
	"filesend-bot/internal/utils/platformerrors"
)

type fakeStorage struct {
	mu        sync.Mutex
	folders   []string
	files     map[string]bool
	uploadErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: map[string]bool{}}
}

func (f *fakeStorage) EnsureFolders(_ context.Context, dirs ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, dir := range dirs {
		f.folders = append(f.folders, storage.Ancestors(dir)...)
	}
	return nil
}

func (f *fakeStorage) Exists(_ context.Context, remotePath string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.files[remotePath], nil
}

func (f *fakeStorage) Upload(_ context.Context, _, remotePath string, overwrite bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	if f.files[remotePath] && !overwrite {
		return storage.ErrAlreadyExists
	}
	f.files[remotePath] = true
	return nil
}

type fixture struct {
	svc     *document.Service
	storage *fakeStorage
	petrov  document.Owner
	ivanova document.Owner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := databasetest.New(t)
	users := userrepo.NewPostgresRepository(db)
	ctx := context.Background()

	p := &user.User{TelegramID: 1, FullName: "Petrov Ivan"}
	i := &user.User{TelegramID: 2, FullName: "Ivanova Maria"}
	require.NoError(t, users.Create(ctx, p))
	require.NoError(t, users.Create(ctx, i))

	st := newFakeStorage()
	checker := similarity.NewChecker(similarity.Config{Threshold: 30, Timeout: 5 * time.Second}, nil, zerolog.Nop())
	return &fixture{
		svc:     document.NewService(docrepo.NewPostgresRepository(db), st, checker, "/FilesSendBot", zerolog.Nop()),
		storage: st,
		petrov:  document.Owner{ID: p.ID, TelegramID: p.TelegramID, FullName: p.FullName},
		ivanova: document.Owner{ID: i.ID, TelegramID: i.TelegramID, FullName: i.FullName},
	}
}

func scratchFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (f *fixture) store(t *testing.T, owner document.Owner, ft document.FileType, content string, replace bool) (*document.StoreResult, error) {
	t.Helper()
	ctx := context.Background()
	target, exists, err := f.svc.PlanTarget(ctx, "[surname]_[type]", owner, ft, "upload.txt")
	require.NoError(t, err)
	if !replace {
		require.False(t, exists)
	}
	return f.svc.Store(ctx, document.StoreParams{
		Owner:       owner,
		Type:        ft,
		Target:      target,
		ScratchPath: scratchFile(t, content),
		Replace:     replace,
	})
}

func TestService_EnsureUserFolder(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.EnsureUserFolder(context.Background(), "Petrov Ivan"))
	assert.Equal(t, []string{"/FilesSendBot", "/FilesSendBot", "/FilesSendBot/Petrov Ivan"}, f.storage.folders)
}

func TestService_StoreEssayReportsSimilarWork(t *testing.T) {
	f := newFixture(t)

	first, err := f.store(t, f.ivanova, document.TypeEssay, "networks are graphs of cooperating machines", false)
	require.NoError(t, err)
	assert.Empty(t, first.Matches, "nothing to compare against yet")
	assert.Equal(t, "/FilesSendBot/Ivanova Maria/Ivanova_Essay.txt", first.File.RemotePath)
	assert.NotEmpty(t, first.File.PublicID)

	second, err := f.store(t, f.petrov, document.TypeEssay, "networks are graphs of cooperating machines", false)
	require.NoError(t, err)
	require.Len(t, second.Matches, 1)
	assert.Equal(t, "Ivanova_Essay.txt", second.Matches[0].FileName)
	assert.Equal(t, "Ivanova Maria", second.Matches[0].OwnerName)
	assert.Equal(t, "100", second.Matches[0].Ratio.String())
}

func TestService_StorePresentationSkipsSimilarity(t *testing.T) {
	f := newFixture(t)

	_, err := f.store(t, f.ivanova, document.TypePresentation, "same slides", false)
	require.NoError(t, err)
	result, err := f.store(t, f.petrov, document.TypePresentation, "same slides", false)
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
}

func TestService_StoreReplaceUpdatesRow(t *testing.T) {
	f := newFixture(t)

	first, err := f.store(t, f.petrov, document.TypeEssay, "first draft", false)
	require.NoError(t, err)

	ctx := context.Background()
	_, exists, err := f.svc.PlanTarget(ctx, "[surname]_[type]", f.petrov, document.TypeEssay, "again.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	second, err := f.store(t, f.petrov, document.TypeEssay, "second draft", true)
	require.NoError(t, err)
	assert.True(t, second.Replaced)
	assert.Equal(t, first.File.ID, second.File.ID)
	assert.Equal(t, "second draft", second.File.Content)
}

func TestService_StoreWithoutReplaceConflicts(t *testing.T) {
	f := newFixture(t)
	_, err := f.store(t, f.petrov, document.TypeEssay, "first", false)
	require.NoError(t, err)

	target := document.NewTarget("/FilesSendBot", "[surname]_[type]", f.petrov.FullName, document.TypeEssay, "upload.txt")
	_, err = f.svc.Store(context.Background(), document.StoreParams{
		Owner:       f.petrov,
		Type:        document.TypeEssay,
		Target:      target,
		ScratchPath: scratchFile(t, "second"),
	})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestService_StoreUploadFailurePersistsNothing(t *testing.T) {
	f := newFixture(t)
	f.storage.uploadErr = platformerrors.NewError(context.Background(), platformerrors.LayerDomain,
		platformerrors.ErrorTypeExternal, "upload file", errors.New("503"))

	_, err := f.store(t, f.petrov, document.TypeEssay, "lost essay", false)
	require.Error(t, err)

	f.storage.uploadErr = nil
	result, err := f.store(t, f.ivanova, document.TypeEssay, "lost essay", false)
	require.NoError(t, err)
	assert.Empty(t, result.Matches, "the failed upload must not have been recorded")
}

func TestService_StoreMissingScratchFile(t *testing.T) {
	f := newFixture(t)
	target := document.NewTarget("/FilesSendBot", "[surname]_[type]", f.petrov.FullName, document.TypeEssay, "a.txt")
	_, err := f.svc.Store(context.Background(), document.StoreParams{
		Owner:       f.petrov,
		Type:        document.TypeEssay,
		Target:      target,
		ScratchPath: filepath.Join(t.TempDir(), "missing"),
	})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeInternal))
}

func TestService_StoreBinaryEssaySkipsSimilarity(t *testing.T) {
	f := newFixture(t)
	docx := "PK\x03\x04\x14\x00\x06\x00word/document.xml"

	first, err := f.store(t, f.ivanova, document.TypeEssay, docx, false)
	require.NoError(t, err)
	assert.Equal(t, document.UndecodablePlaceholder, first.File.Content)

	second, err := f.store(t, f.petrov, document.TypeEssay, docx, false)
	require.NoError(t, err)
	assert.Empty(t, second.Matches, "undecodable essays are never reported as similar")
	assert.Equal(t, document.UndecodablePlaceholder, second.File.Content)
}
