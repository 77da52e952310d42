package conversation

import (
	"context"
	"time"
)

// State is the step a user is at in a dialog.
type State string

const (
	StateIdle                        State = "idle"
	StateAwaitingFullName            State = "awaiting_full_name"
	StateAwaitingFile                State = "awaiting_file"
	StateAwaitingFileType            State = "awaiting_file_type"
	StateAwaitingReplaceConfirmation State = "awaiting_replace_confirmation"
	StateAdminMenu                   State = "admin_menu"
	StateAdminAwaitingTemplate       State = "admin_awaiting_template"
	StateAdminAwaitingLogChatID      State = "admin_awaiting_log_chat_id"
	StateAdminAwaitingUserChoice     State = "admin_awaiting_user_management_choice"
	StateAdminAwaitingUserID         State = "admin_awaiting_user_id"
)

// UserAction is the admin flag change picked in the user management screen.
type UserAction string

const (
	UserActionMakeAdmin   UserAction = "make_admin"
	UserActionRemoveAdmin UserAction = "remove_admin"
)

// Payload is the transient data carried between steps.
type Payload struct {
	FileID      string     `json:"file_id,omitempty"`
	FileName    string     `json:"file_name,omitempty"`
	FileType    string     `json:"file_type,omitempty"`
	ScratchPath string     `json:"scratch_path,omitempty"`
	TargetPath  string     `json:"target_path,omitempty"`
	TargetName  string     `json:"target_name,omitempty"`
	TargetDir   string     `json:"target_dir,omitempty"`
	UserAction  UserAction `json:"user_action,omitempty"`
}

// Session is one user's dialog position.
type Session struct {
	State     State     `json:"state"`
	Payload   Payload   `json:"payload"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession returns an idle session.
func NewSession() *Session {
	return &Session{State: StateIdle}
}

// Reset returns the session to Idle and clears transient data. It reports
// the scratch file that was pending, if any.
func (s *Session) Reset() (scratchPath string) {
	scratchPath = s.Payload.ScratchPath
	s.State = StateIdle
	s.Payload = Payload{}
	return scratchPath
}

// SessionStore keeps sessions keyed by telegram user id. Get returns an idle
// session when none is stored.
type SessionStore interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Save(ctx context.Context, userID int64, s *Session) error
	Delete(ctx context.Context, userID int64) error
	// WithLock runs fn while holding the user's session lock.
	WithLock(ctx context.Context, userID int64, fn func(ctx context.Context) error) error
}
