package document_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "filesend-bot/internal/domain/document"
	userdomain "filesend-bot/internal/domain/user"
	"filesend-bot/internal/infrastructure/database/databasetest"
	repo "filesend-bot/internal/infrastructure/repository/document"
	userrepo "filesend-bot/internal/infrastructure/repository/user"
	"filesend-bot/internal/utils/fileid"
	"filesend-bot/internal/utils/platformerrors"
)

func TestPostgresRepository_Lifecycle(t *testing.T) {
	db := databasetest.New(t)
	users := userrepo.NewPostgresRepository(db)
	files := repo.NewPostgresRepository(db)
	ctx := context.Background()

	petrov := &userdomain.User{TelegramID: 1, FullName: "Petrov Ivan"}
	ivanova := &userdomain.User{TelegramID: 2, FullName: "Ivanova Maria"}
	require.NoError(t, users.Create(ctx, petrov))
	require.NoError(t, users.Create(ctx, ivanova))

	essay := &domain.UploadedFile{
		PublicID:   fileid.New(),
		UserID:     petrov.ID,
		FileName:   "Petrov_Essay.txt",
		FileType:   domain.TypeEssay,
		Content:    "first draft",
		RemotePath: "/FilesSendBot/Petrov Ivan/Petrov_Essay.txt",
	}
	require.NoError(t, files.Create(ctx, essay))
	require.NotZero(t, essay.ID)

	require.NoError(t, files.Create(ctx, &domain.UploadedFile{
		PublicID:   fileid.New(),
		UserID:     ivanova.ID,
		FileName:   "Ivanova_Essay.txt",
		FileType:   domain.TypeEssay,
		Content:    "another essay",
		RemotePath: "/FilesSendBot/Ivanova Maria/Ivanova_Essay.txt",
	}))
	require.NoError(t, files.Create(ctx, &domain.UploadedFile{
		PublicID:   fileid.New(),
		UserID:     ivanova.ID,
		FileName:   "Ivanova_Presentation.pptx",
		FileType:   domain.TypePresentation,
		Content:    "slides",
		RemotePath: "/FilesSendBot/Ivanova Maria/Ivanova_Presentation.pptx",
	}))

	found, err := files.FindByRemotePath(ctx, essay.RemotePath)
	require.NoError(t, err)
	assert.Equal(t, essay.ID, found.ID)
	assert.Equal(t, "Petrov Ivan", found.OwnerName)

	require.NoError(t, files.UpdateContent(ctx, essay.ID, "second draft", essay.RemotePath))
	found, err = files.FindByRemotePath(ctx, essay.RemotePath)
	require.NoError(t, err)
	assert.Equal(t, "second draft", found.Content)

	others, err := files.ListByType(ctx, domain.TypeEssay, petrov.ID)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, "Ivanova_Essay.txt", others[0].FileName)
	assert.Equal(t, "Ivanova Maria", others[0].OwnerName)
	assert.Equal(t, int64(2), others[0].OwnerTelegramID)

	_, err = files.FindByRemotePath(ctx, "/nowhere")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))

	err = files.UpdateContent(ctx, 9999, "x", "/nowhere")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
}
