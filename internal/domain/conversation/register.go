package conversation

import (
	"context"

	"filesend-bot/internal/domain/user"
	"filesend-bot/internal/utils/platformerrors"
)

func (t *turn) start(ctx context.Context) {
	u, err := t.users.Get(ctx, t.ev.UserID)
	switch {
	case err == nil:
		t.say(greetRegistered(u.FullName), mainMenu(u.IsAdmin))
	case platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound):
		t.sess.State = StateAwaitingFullName
		t.say(msgWelcome, nil)
	default:
		t.fail(err, msgInternalError)
	}
}

func (t *turn) onFullName(ctx context.Context) {
	if t.ev.Kind != EventText {
		t.say(msgFullNameInvalid, nil)
		return
	}

	u, err := t.users.Register(ctx, t.ev.UserID, t.ev.Text)
	switch {
	case err == nil:
	case platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation):
		t.say(msgFullNameInvalid, nil)
		return
	case platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict):
		t.reset()
		t.start(ctx)
		return
	default:
		t.fail(err, msgInternalError)
		return
	}

	t.reset()
	if err := t.documents.EnsureUserFolder(ctx, u.FullName); err != nil {
		platformerrors.LogError(t.log, err)
		t.say(msgFolderFailed, nil)
		return
	}

	t.log.Info().Str("full_name", u.FullName).Msg("registration completed")
	t.say(registered(u.FullName), mainMenu(u.IsAdmin))
	t.notifier.Registration(ctx, u.FullName, u.TelegramID)
}

func (t *turn) claimFirstAdmin(ctx context.Context) {
	result, err := t.users.ClaimFirstAdmin(ctx, t.ev.UserID)
	if err != nil {
		t.fail(err, msgInternalError)
		return
	}

	switch result {
	case user.BootstrapGranted:
		t.say(msgFirstAdmin, mainMenu(true))
	case user.BootstrapNotRegistered:
		t.say(msgNotRegistered, nil)
	case user.BootstrapAdminExists:
		t.say(msgAdminExists, nil)
	}
}
