package conversation

import (
	"context"
	"os"
	"path/filepath"

	"filesend-bot/internal/domain/document"
	"filesend-bot/internal/domain/user"
	"filesend-bot/internal/utils/fileid"
	"filesend-bot/internal/utils/platformerrors"
)

func (t *turn) beginUpload(ctx context.Context) {
	if _, ok := t.currentUser(ctx); !ok {
		return
	}
	t.sess.State = StateAwaitingFile
	t.say(msgSendFile, nil)
}

func (t *turn) onFile(ctx context.Context) {
	if t.ev.Kind != EventDocument || t.ev.Document == nil {
		t.say(msgSendDocument, nil)
		return
	}

	t.sess.Payload.FileID = t.ev.Document.FileID
	t.sess.Payload.FileName = t.ev.Document.FileName
	t.sess.State = StateAwaitingFileType
	t.say(msgChooseType, fileTypeMenu())
}

func (t *turn) onFileType(ctx context.Context, value string) {
	if t.sess.State != StateAwaitingFileType {
		t.expired()
		return
	}
	ft, ok := document.ParseFileType(value)
	if !ok {
		t.expired()
		return
	}
	u, ok := t.currentUser(ctx)
	if !ok {
		return
	}

	tpl, err := t.settings.Template(ctx)
	if err != nil {
		t.uploadFailed(u, ft, err)
		return
	}

	target, exists, err := t.documents.PlanTarget(ctx, tpl.Template, owner(u), ft, t.sess.Payload.FileName)
	if err != nil {
		t.uploadFailed(u, ft, err)
		return
	}

	scratch, err := t.download(ctx, t.sess.Payload.FileID, t.sess.Payload.FileName)
	if err != nil {
		t.uploadFailed(u, ft, err)
		return
	}

	t.sess.Payload.FileType = string(ft)
	t.sess.Payload.ScratchPath = scratch
	t.sess.Payload.TargetDir = target.Folder
	t.sess.Payload.TargetName = target.Name
	t.sess.Payload.TargetPath = target.Path

	if exists {
		t.sess.State = StateAwaitingReplaceConfirmation
		t.say(replacePrompt(target.Name), replaceMenu())
		return
	}
	t.deliver(ctx, u, false)
}

func (t *turn) onReplace(ctx context.Context, value string) {
	if t.sess.State != StateAwaitingReplaceConfirmation {
		t.expired()
		return
	}

	switch value {
	case "confirm":
		u, ok := t.currentUser(ctx)
		if !ok {
			return
		}
		t.deliver(ctx, u, true)
	case "cancel":
		ft := document.FileType(t.sess.Payload.FileType)
		t.reset()
		t.observeUpload(ft, UploadCancelled)
		isAdmin := false
		if u, err := t.users.Get(ctx, t.ev.UserID); err == nil {
			isAdmin = u.IsAdmin
		}
		t.say(msgUploadCancelled, mainMenu(isAdmin))
	default:
		t.expired()
	}
}

// deliver stores the pending scratch file and ends the flow. The scratch
// file is removed whatever the outcome.
func (t *turn) deliver(ctx context.Context, u *user.User, replace bool) {
	p := t.sess.Payload
	ft := document.FileType(p.FileType)

	result, err := t.documents.Store(ctx, document.StoreParams{
		Owner: owner(u),
		Type:  ft,
		Target: document.Target{
			Folder: p.TargetDir,
			Name:   p.TargetName,
			Path:   p.TargetPath,
		},
		ScratchPath: p.ScratchPath,
		Replace:     replace,
	})
	t.reset()
	if err != nil {
		t.uploadFailed(u, ft, err)
		return
	}

	status := UploadStored
	if result.Replaced {
		status = UploadReplaced
	}
	t.observeUpload(ft, status)
	t.log.Info().
		Str("path", result.File.RemotePath).
		Str("file_type", string(ft)).
		Int("similar", len(result.Matches)).
		Msg("upload completed")

	t.say(uploaded(result), mainMenu(u.IsAdmin))
	t.notifier.Upload(ctx, u.FullName, u.TelegramID, ft, result.File.FileName, result.Matches)
}

func (t *turn) uploadFailed(u *user.User, ft document.FileType, err error) {
	platformerrors.LogError(t.log, err)
	t.observeUpload(ft, UploadFailed)
	t.reset()
	t.say(msgUploadFailed, mainMenu(u.IsAdmin))
}

// download fetches the attachment into a fresh scratch file.
func (t *turn) download(ctx context.Context, fileID, fileName string) (string, error) {
	if err := os.MkdirAll(t.scratchDir, 0o700); err != nil {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"create scratch directory", err)
	}

	path := filepath.Join(t.scratchDir, fileid.New()+document.Extension(fileName))
	if err := t.downloader.Download(ctx, fileID, path); err != nil {
		t.removeScratch(path)
		return "", platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			"download attachment", err, map[string]any{"file_name": fileName})
	}
	return path, nil
}

func owner(u *user.User) document.Owner {
	return document.Owner{ID: u.ID, TelegramID: u.TelegramID, FullName: u.FullName}
}
