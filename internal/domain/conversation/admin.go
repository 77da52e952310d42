package conversation

import (
	"context"
	"strconv"
	"strings"

	"filesend-bot/internal/domain/settings"
	"filesend-bot/internal/domain/user"
	"filesend-bot/internal/utils/platformerrors"
)

// requireAdmin refuses and resets the session unless the acting user is an
// administrator.
func (t *turn) requireAdmin(ctx context.Context) (*user.User, bool) {
	u, err := t.users.Get(ctx, t.ev.UserID)
	if err != nil && !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.fail(err, msgInternalError)
		return nil, false
	}
	if err != nil || !u.IsAdmin {
		t.log.Warn().Msg("admin action refused")
		t.reset()
		t.say(msgNoAdminRights, nil)
		return nil, false
	}
	return u, true
}

func (t *turn) openAdminMenu(ctx context.Context) {
	if _, ok := t.requireAdmin(ctx); !ok {
		return
	}
	t.reset()
	t.sess.State = StateAdminMenu
	t.say(msgAdminPanel, adminMenu())
}

func (t *turn) onAdmin(ctx context.Context, value string) {
	if _, ok := t.requireAdmin(ctx); !ok {
		return
	}
	// admin screens abandon any pending upload
	t.reset()

	switch value {
	case "users":
		users, err := t.users.List(ctx)
		if err != nil {
			t.fail(err, msgInternalError)
			return
		}
		t.sess.State = StateAdminAwaitingUserChoice
		t.say(userList(users), userManagementMenu())
	case "template":
		tpl, err := t.settings.Template(ctx)
		if err != nil {
			t.fail(err, msgInternalError)
			return
		}
		t.sess.State = StateAdminAwaitingTemplate
		t.say(templatePrompt(tpl.Template), nil)
	case "logging":
		ls, err := t.settings.LogSettings(ctx)
		if err != nil {
			t.fail(err, msgInternalError)
			return
		}
		t.showLogging(ls)
	case "back":
		t.say(msgMainMenu, mainMenu(true))
	default:
		t.expired()
	}
}

func (t *turn) showLogging(ls *settings.LogSettings) {
	t.sess.State = StateAdminMenu
	t.say(loggingScreen(ls), loggingMenu(ls))
}

func (t *turn) onUserAction(ctx context.Context, value string) {
	if _, ok := t.requireAdmin(ctx); !ok {
		return
	}
	t.reset()

	action := UserAction(value)
	if action != UserActionMakeAdmin && action != UserActionRemoveAdmin {
		t.expired()
		return
	}
	t.sess.Payload.UserAction = action
	t.sess.State = StateAdminAwaitingUserID
	t.say(msgEnterUserID, nil)
}

func (t *turn) onUserIDInput(ctx context.Context) {
	if _, ok := t.requireAdmin(ctx); !ok {
		return
	}

	telegramID, err := strconv.ParseInt(strings.TrimSpace(t.ev.Text), 10, 64)
	if err != nil {
		t.say(msgInvalidUserID, nil)
		return
	}

	target, err := t.users.SetAdmin(ctx, telegramID, t.sess.Payload.UserAction == UserActionMakeAdmin)
	switch {
	case err == nil:
	case platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound):
		t.say(msgUserNotFound, nil)
		return
	default:
		t.fail(err, msgInternalError)
		return
	}

	t.sess.Payload = Payload{}
	t.sess.State = StateAdminMenu
	t.say(adminChanged(target), adminMenu())
}

func (t *turn) onTemplateInput(ctx context.Context) {
	if _, ok := t.requireAdmin(ctx); !ok {
		return
	}

	tpl, err := t.settings.SetTemplate(ctx, t.ev.Text)
	switch {
	case err == nil:
	case platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation):
		t.say(msgTemplateEmpty, nil)
		return
	default:
		t.fail(err, msgInternalError)
		return
	}

	t.sess.State = StateAdminMenu
	t.say(templateUpdated(tpl.Template), adminMenu())
}

func (t *turn) onLogAction(ctx context.Context, value string) {
	if _, ok := t.requireAdmin(ctx); !ok {
		return
	}
	t.reset()

	var (
		ls  *settings.LogSettings
		err error
	)
	switch value {
	case "toggle_reg":
		ls, err = t.settings.ToggleRegistrations(ctx)
	case "toggle_upload":
		ls, err = t.settings.ToggleUploads(ctx)
	case "set_chat":
		t.sess.State = StateAdminAwaitingLogChatID
		t.say(msgEnterLogChat, nil)
		return
	default:
		t.expired()
		return
	}
	if err != nil {
		t.fail(err, msgInternalError)
		return
	}
	t.showLogging(ls)
}

func (t *turn) onLogChatInput(ctx context.Context) {
	if _, ok := t.requireAdmin(ctx); !ok {
		return
	}

	raw := strings.TrimSpace(t.ev.Text)
	if raw == "" {
		t.say(msgLogChatEmpty, nil)
		return
	}

	ls, err := t.settings.SetLogChat(ctx, raw)
	if err != nil {
		t.fail(err, msgInternalError)
		return
	}

	t.sess.State = StateAdminMenu
	if ls.HasDestination() {
		t.say(logChatSet(ls.ChatID), adminMenu())
		return
	}
	t.say(msgLogChatCleared, adminMenu())
}
