package telegram_test

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filesend-bot/internal/domain/conversation"
	"filesend-bot/internal/infrastructure/telegram"
)

func commandMessage(userID int64, text string, length int) *tgbotapi.Message {
	return &tgbotapi.Message{
		From:     &tgbotapi.User{ID: userID},
		Chat:     &tgbotapi.Chat{ID: userID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

func TestToEvent(t *testing.T) {
	from := &tgbotapi.User{ID: 7}
	chat := &tgbotapi.Chat{ID: 70}

	tests := []struct {
		name   string
		update tgbotapi.Update
		want   conversation.Event
		ok     bool
	}{
		{
			name:   "command",
			update: tgbotapi.Update{Message: commandMessage(7, "/start", 6)},
			want:   conversation.Event{UserID: 7, ChatID: 7, Kind: conversation.EventCommand, Command: "start", Text: "/start"},
			ok:     true,
		},
		{
			name:   "command addressed to the bot",
			update: tgbotapi.Update{Message: commandMessage(7, "/upload@files_bot", 17)},
			want:   conversation.Event{UserID: 7, ChatID: 7, Kind: conversation.EventCommand, Command: "upload", Text: "/upload@files_bot"},
			ok:     true,
		},
		{
			name:   "text",
			update: tgbotapi.Update{Message: &tgbotapi.Message{From: from, Chat: chat, Text: "Petrov Ivan"}},
			want:   conversation.Event{UserID: 7, ChatID: 70, Kind: conversation.EventText, Text: "Petrov Ivan"},
			ok:     true,
		},
		{
			name: "document",
			update: tgbotapi.Update{Message: &tgbotapi.Message{From: from, Chat: chat, Document: &tgbotapi.Document{
				FileID: "abc", FileName: "essay.txt", FileSize: 512,
			}}},
			want: conversation.Event{UserID: 7, ChatID: 70, Kind: conversation.EventDocument,
				Document: &conversation.Document{FileID: "abc", FileName: "essay.txt"}},
			ok: true,
		},
		{
			name:   "photo",
			update: tgbotapi.Update{Message: &tgbotapi.Message{From: from, Chat: chat, Photo: []tgbotapi.PhotoSize{{FileID: "p"}}}},
			want:   conversation.Event{UserID: 7, ChatID: 70, Kind: conversation.EventOther},
			ok:     true,
		},
		{
			name: "callback",
			update: tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
				ID: "cb", From: from, Data: "menu:upload", Message: &tgbotapi.Message{Chat: chat},
			}},
			want: conversation.Event{UserID: 7, ChatID: 70, Kind: conversation.EventCallback, CallbackData: "menu:upload"},
			ok:   true,
		},
		{
			name:   "inline callback falls back to the sender",
			update: tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{ID: "cb", From: from, Data: "menu:back"}},
			want:   conversation.Event{UserID: 7, ChatID: 7, Kind: conversation.EventCallback, CallbackData: "menu:back"},
			ok:     true,
		},
		{
			name:   "channel post",
			update: tgbotapi.Update{ChannelPost: &tgbotapi.Message{Chat: chat, Text: "hello"}},
		},
		{
			name:   "message without sender",
			update: tgbotapi.Update{Message: &tgbotapi.Message{Chat: chat, Text: "hello"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := telegram.ToEvent(tt.update)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []conversation.Event
}

func (r *recordingDispatcher) Submit(_ context.Context, ev conversation.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingDispatcher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestPoller_DispatchesAndAnswersCallbacks(t *testing.T) {
	api := &fakeAPI{updates: make(chan tgbotapi.Update, 3)}
	client := telegram.NewClient(api, time.Second, zerolog.Nop())
	dispatcher := &recordingDispatcher{}
	poller := telegram.NewPoller(api, client, dispatcher, 30, zerolog.Nop())

	api.updates <- tgbotapi.Update{UpdateID: 1, Message: commandMessage(7, "/start", 6)}
	api.updates <- tgbotapi.Update{UpdateID: 2, ChannelPost: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}}}
	api.updates <- tgbotapi.Update{UpdateID: 3, CallbackQuery: &tgbotapi.CallbackQuery{
		ID: "cb-1", From: &tgbotapi.User{ID: 7}, Data: "menu:upload",
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	require.Eventually(t, func() bool { return dispatcher.count() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.True(t, api.stopped)
	require.Len(t, api.requests, 1)
	answer, ok := api.requests[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.Equal(t, "cb-1", answer.CallbackQueryID)
	assert.Equal(t, conversation.EventCommand, dispatcher.events[0].Kind)
	assert.Equal(t, conversation.EventCallback, dispatcher.events[1].Kind)
}
