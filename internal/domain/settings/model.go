package settings

import "time"

// Placeholders recognised in the file name template.
const (
	PlaceholderSurname = "[surname]"
	PlaceholderType    = "[type]"
)

// ClearKeyword unsets the log destination when sent as the new chat id.
const ClearKeyword = "clear"

// FileTemplate is the naming template applied to uploaded documents.
type FileTemplate struct {
	Template  string
	UpdatedAt time.Time
}

// LogSettings controls which events reach the admin log channel.
type LogSettings struct {
	// ChatID is empty when no destination is configured.
	ChatID           string
	LogRegistrations bool
	LogFileUploads   bool
}

// HasDestination reports whether a log channel is configured.
func (l LogSettings) HasDestination() bool {
	return l.ChatID != ""
}
