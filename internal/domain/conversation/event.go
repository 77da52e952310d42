package conversation

import (
	"context"
	"strings"
)

// EventKind classifies an inbound action.
type EventKind int

const (
	EventText EventKind = iota
	EventCommand
	EventDocument
	EventCallback
	// EventOther covers photos, stickers and anything else without text.
	EventOther
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventCommand:
		return "command"
	case EventDocument:
		return "document"
	case EventCallback:
		return "callback"
	}
	return "other"
}

// Commands understood by the engine.
const (
	CommandStart     = "start"
	CommandUpload    = "upload"
	CommandMakeAdmin = "makeadmin"
)

// Document is an attached file as announced by the chat platform.
type Document struct {
	FileID   string
	FileName string
}

// Event is one inbound user action.
type Event struct {
	UserID int64
	ChatID int64
	Kind   EventKind
	// Command is set for EventCommand, without the leading slash.
	Command      string
	Text         string
	Document     *Document
	CallbackData string
}

// Button is an inline keyboard button.
type Button struct {
	Text string
	Data string
}

// Reply is an outbound message with an optional inline keyboard, one slice
// per row.
type Reply struct {
	Text     string
	Keyboard [][]Button
}

// Messenger delivers replies to a chat.
type Messenger interface {
	Send(ctx context.Context, chatID int64, reply Reply) error
}

// Downloader fetches an attached file into destPath.
type Downloader interface {
	Download(ctx context.Context, fileID, destPath string) error
}

// splitCallback parses "prefix:value" callback data.
func splitCallback(data string) (prefix, value string) {
	prefix, value, _ = strings.Cut(data, ":")
	return prefix, value
}
