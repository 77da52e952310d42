// Package notify relays bot events to the admin log channel.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"filesend-bot/internal/domain/document"
	"filesend-bot/internal/domain/settings"
	"filesend-bot/internal/domain/similarity"
	"filesend-bot/internal/utils/platformerrors"
)

// Event names passed to the Observer.
const (
	EventRegistration = "registration"
	EventUpload       = "upload"
)

// Send outcomes passed to the Observer.
const (
	StatusSent    = "sent"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Sender delivers a text line to a chat. chatRef is the stored destination,
// either a numeric chat id or a channel username.
type Sender interface {
	SendToChat(ctx context.Context, chatRef string, text string) error
}

// SettingsSource provides the current log settings.
type SettingsSource interface {
	LogSettings(ctx context.Context) (*settings.LogSettings, error)
}

// Observer is told the outcome of every relay attempt.
type Observer func(event, status string)

// Relay sends log lines on a best-effort basis. It never returns errors.
type Relay struct {
	settings SettingsSource
	sender   Sender
	observe  Observer
	log      zerolog.Logger
}

// NewRelay builds a Relay. observe may be nil.
func NewRelay(source SettingsSource, sender Sender, observe Observer, log zerolog.Logger) *Relay {
	return &Relay{
		settings: source,
		sender:   sender,
		observe:  observe,
		log:      log.With().Str("component", "notify-relay").Logger(),
	}
}

// Registration announces a new user when registration logging is on.
func (r *Relay) Registration(ctx context.Context, fullName string, telegramID int64) {
	r.send(ctx, EventRegistration, func(ls *settings.LogSettings) bool { return ls.LogRegistrations },
		RegistrationLine(fullName, telegramID))
}

// Upload announces a delivered document when upload logging is on.
func (r *Relay) Upload(ctx context.Context, fullName string, telegramID int64, t document.FileType, fileName string, matches []similarity.Match) {
	r.send(ctx, EventUpload, func(ls *settings.LogSettings) bool { return ls.LogFileUploads },
		UploadLine(fullName, telegramID, t, fileName, matches))
}

func (r *Relay) send(ctx context.Context, event string, enabled func(*settings.LogSettings) bool, text string) {
	ls, err := r.settings.LogSettings(ctx)
	if err != nil {
		platformerrors.LogError(r.log, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "load log settings"))
		r.record(event, StatusFailed)
		return
	}
	if !enabled(ls) || !ls.HasDestination() {
		r.record(event, StatusSkipped)
		return
	}

	if err := r.sender.SendToChat(ctx, ls.ChatID, text); err != nil {
		r.log.Error().Err(err).
			Str("event", event).
			Str("chat", ls.ChatID).
			Msg("failed to send log message")
		r.record(event, StatusFailed)
		return
	}
	r.record(event, StatusSent)
}

func (r *Relay) record(event, status string) {
	if r.observe != nil {
		r.observe(event, status)
	}
}

// RegistrationLine formats the registration announcement.
func RegistrationLine(fullName string, telegramID int64) string {
	return fmt.Sprintf("New registration: %s (ID: %d)", fullName, telegramID)
}

// UploadLine formats the upload announcement. Similar essays are listed
// after the file details.
func UploadLine(fullName string, telegramID int64, t document.FileType, fileName string, matches []similarity.Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File upload: %s (ID: %d)\nType: %s\nFile name: %s", fullName, telegramID, t.Label(), fileName)
	if len(matches) > 0 {
		b.WriteString("\nSimilar works:")
		for _, m := range matches {
			fmt.Fprintf(&b, "\n- %s by %s: %s%%", m.FileName, m.OwnerName, m.Ratio.StringFixed(2))
		}
	}
	return b.String()
}
