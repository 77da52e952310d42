// Package conversation drives the per-user dialog: registration, document
// upload and the admin panel.
package conversation

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"filesend-bot/internal/domain/document"
	"filesend-bot/internal/domain/settings"
	"filesend-bot/internal/domain/similarity"
	"filesend-bot/internal/domain/user"
	"filesend-bot/internal/utils/platformerrors"
)

// Documents is the intake pipeline used by the upload flow.
type Documents interface {
	EnsureUserFolder(ctx context.Context, fullName string) error
	PlanTarget(ctx context.Context, template string, owner document.Owner, t document.FileType, originalName string) (document.Target, bool, error)
	Store(ctx context.Context, p document.StoreParams) (*document.StoreResult, error)
}

// Notifier relays events to the admin log channel.
type Notifier interface {
	Registration(ctx context.Context, fullName string, telegramID int64)
	Upload(ctx context.Context, fullName string, telegramID int64, t document.FileType, fileName string, matches []similarity.Match)
}

// UploadObserver is told the outcome of every upload attempt.
type UploadObserver func(fileType, status string)

// Upload outcomes reported to the UploadObserver.
const (
	UploadStored    = "stored"
	UploadReplaced  = "replaced"
	UploadCancelled = "cancelled"
	UploadFailed    = "failed"
)

// Deps are the collaborators of an Engine.
type Deps struct {
	Users      user.Service
	Settings   settings.Service
	Documents  Documents
	Notifier   Notifier
	Sessions   SessionStore
	Messenger  Messenger
	Downloader Downloader
	// ScratchDir receives downloads while they are processed. Defaults to
	// a directory under os.TempDir.
	ScratchDir string
	// OnUpload may be nil.
	OnUpload UploadObserver
}

// Engine is the conversation state machine.
type Engine struct {
	users      user.Service
	settings   settings.Service
	documents  Documents
	notifier   Notifier
	sessions   SessionStore
	messenger  Messenger
	downloader Downloader
	scratchDir string
	onUpload   UploadObserver
	log        zerolog.Logger
}

// NewEngine wires the engine.
func NewEngine(deps Deps, log zerolog.Logger) *Engine {
	scratchDir := deps.ScratchDir
	if scratchDir == "" {
		scratchDir = DefaultScratchDir()
	}
	return &Engine{
		users:      deps.Users,
		settings:   deps.Settings,
		documents:  deps.Documents,
		notifier:   deps.Notifier,
		sessions:   deps.Sessions,
		messenger:  deps.Messenger,
		downloader: deps.Downloader,
		scratchDir: scratchDir,
		onUpload:   deps.OnUpload,
		log:        log.With().Str("component", "conversation-engine").Logger(),
	}
}

// DefaultScratchDir is used when no scratch directory is configured.
func DefaultScratchDir() string {
	return filepath.Join(os.TempDir(), "filesend-bot")
}

// ScratchDir returns the directory downloads are written to.
func (e *Engine) ScratchDir() string {
	return e.scratchDir
}

// Handle processes one event for its user under the user's session lock.
// Domain failures are answered in chat; the returned error reports session
// or delivery problems only.
func (e *Engine) Handle(ctx context.Context, ev Event) error {
	return e.sessions.WithLock(ctx, ev.UserID, func(ctx context.Context) error {
		sess, err := e.sessions.Get(ctx, ev.UserID)
		if err != nil {
			return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "load session")
		}

		t := &turn{
			Engine: e,
			ev:     ev,
			sess:   sess,
			log: e.log.With().
				Int64("telegram_id", ev.UserID).
				Str("state", string(sess.State)).
				Str("event", ev.Kind.String()).
				Str("request_id", platformerrors.RequestIDFromContext(ctx)).
				Logger(),
		}
		t.dispatch(ctx)
		return t.finish(ctx)
	})
}

// turn is the handling of a single event.
type turn struct {
	*Engine
	ev      Event
	sess    *Session
	replies []Reply
	log     zerolog.Logger
}

func (t *turn) dispatch(ctx context.Context) {
	switch t.ev.Kind {
	case EventCommand:
		t.onCommand(ctx)
	case EventCallback:
		t.onCallback(ctx)
	default:
		t.onInput(ctx)
	}
}

func (t *turn) onCommand(ctx context.Context) {
	switch t.ev.Command {
	case CommandStart:
		t.reset()
		t.start(ctx)
	case CommandUpload:
		t.reset()
		t.beginUpload(ctx)
	case CommandMakeAdmin:
		t.reset()
		t.claimFirstAdmin(ctx)
	default:
		t.onInput(ctx)
	}
}

func (t *turn) onCallback(ctx context.Context) {
	prefix, value := splitCallback(t.ev.CallbackData)
	switch prefix {
	case prefixMenu:
		t.onMenu(ctx, value)
	case prefixAdmin:
		t.onAdmin(ctx, value)
	case prefixUserAction:
		t.onUserAction(ctx, value)
	case prefixLogAction:
		t.onLogAction(ctx, value)
	case prefixFileType:
		t.onFileType(ctx, value)
	case prefixReplace:
		t.onReplace(ctx, value)
	default:
		t.expired()
	}
}

func (t *turn) onMenu(ctx context.Context, value string) {
	switch value {
	case "upload":
		t.reset()
		t.beginUpload(ctx)
	case "admin":
		t.openAdminMenu(ctx)
	case "back":
		t.reset()
		isAdmin := false
		if u, err := t.users.Get(ctx, t.ev.UserID); err == nil {
			isAdmin = u.IsAdmin
		}
		t.say(msgMainMenu, mainMenu(isAdmin))
	default:
		t.expired()
	}
}

// onInput routes text, documents and other messages by state.
func (t *turn) onInput(ctx context.Context) {
	switch t.sess.State {
	case StateAwaitingFullName:
		t.onFullName(ctx)
	case StateAwaitingFile:
		t.onFile(ctx)
	case StateAwaitingFileType:
		t.say(msgChooseTypeButtons, fileTypeMenu())
	case StateAwaitingReplaceConfirmation:
		t.say(msgReplaceButtons, replaceMenu())
	case StateAdminAwaitingTemplate:
		t.onTemplateInput(ctx)
	case StateAdminAwaitingLogChatID:
		t.onLogChatInput(ctx)
	case StateAdminAwaitingUserID:
		t.onUserIDInput(ctx)
	default:
		t.hint(ctx)
	}
}

func (t *turn) hint(ctx context.Context) {
	u, err := t.users.Get(ctx, t.ev.UserID)
	switch {
	case err == nil:
		t.say(msgUseMenu, mainMenu(u.IsAdmin))
	case platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound):
		t.say(msgUnregisteredHint, nil)
	default:
		t.fail(err, msgInternalError)
	}
}

func (t *turn) say(text string, keyboard [][]Button) {
	t.replies = append(t.replies, Reply{Text: text, Keyboard: keyboard})
}

func (t *turn) expired() {
	t.log.Debug().Str("callback", t.ev.CallbackData).Msg("stale callback")
	t.say(msgExpired, nil)
}

// fail logs err, resets the session and answers with msg.
func (t *turn) fail(err error, msg string) {
	platformerrors.LogError(t.log, err)
	t.reset()
	t.say(msg, nil)
}

// reset returns the session to Idle and removes a pending scratch file.
func (t *turn) reset() {
	if scratch := t.sess.Reset(); scratch != "" {
		t.removeScratch(scratch)
	}
}

func (t *turn) removeScratch(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		t.log.Warn().Err(err).Str("scratch_path", path).Msg("failed to remove scratch file")
	}
}

// finish persists the session and sends the collected replies.
func (t *turn) finish(ctx context.Context) error {
	var err error
	if t.sess.State == StateIdle && t.sess.Payload == (Payload{}) {
		err = t.sessions.Delete(ctx, t.ev.UserID)
	} else {
		err = t.sessions.Save(ctx, t.ev.UserID, t.sess)
	}
	if err != nil {
		err = platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "store session")
	}

	for _, reply := range t.replies {
		if sendErr := t.messenger.Send(ctx, t.ev.ChatID, reply); sendErr != nil {
			err = errors.Join(err, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeExternal, "send reply", sendErr))
		}
	}
	return err
}

// currentUser loads the acting user. It answers and resets when the user is
// not registered or the lookup fails.
func (t *turn) currentUser(ctx context.Context) (*user.User, bool) {
	u, err := t.users.Get(ctx, t.ev.UserID)
	if err == nil {
		return u, true
	}
	if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.reset()
		t.say(msgNotRegistered, nil)
		return nil, false
	}
	t.fail(err, msgInternalError)
	return nil, false
}

func (t *turn) observeUpload(ft document.FileType, status string) {
	if t.onUpload != nil {
		t.onUpload(string(ft), status)
	}
}
