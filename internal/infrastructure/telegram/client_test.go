package telegram_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
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

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  error
	fileURL  string
	updates  chan tgbotapi.Update
	stopped  bool
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	if f.fileURL == "" {
		return "", errors.New("file is too big")
	}
	return f.fileURL + "/" + fileID, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) lastMessage(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	msg, ok := f.sent[len(f.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok)
	return msg
}

func TestClient_SendWithKeyboard(t *testing.T) {
	api := &fakeAPI{}
	client := telegram.NewClient(api, time.Second, zerolog.Nop())

	err := client.Send(context.Background(), 42, conversation.Reply{
		Text: "Choose the file type:",
		Keyboard: [][]conversation.Button{{
			{Text: "Essay", Data: "file_type:essay"},
			{Text: "Presentation", Data: "file_type:presentation"},
		}},
	})
	require.NoError(t, err)

	msg := api.lastMessage(t)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, "Choose the file type:", msg.Text)

	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 1)
	require.Len(t, markup.InlineKeyboard[0], 2)
	assert.Equal(t, "Presentation", markup.InlineKeyboard[0][1].Text)
	require.NotNil(t, markup.InlineKeyboard[0][1].CallbackData)
	assert.Equal(t, "file_type:presentation", *markup.InlineKeyboard[0][1].CallbackData)
}

func TestClient_SendWithoutKeyboard(t *testing.T) {
	api := &fakeAPI{}
	client := telegram.NewClient(api, time.Second, zerolog.Nop())

	require.NoError(t, client.Send(context.Background(), 42, conversation.Reply{Text: "hi"}))
	assert.Nil(t, api.lastMessage(t).ReplyMarkup)
}

func TestClient_SendError(t *testing.T) {
	api := &fakeAPI{sendErr: errors.New("Forbidden: bot was blocked by the user")}
	client := telegram.NewClient(api, time.Second, zerolog.Nop())

	err := client.Send(context.Background(), 42, conversation.Reply{Text: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot was blocked")
}

func TestClient_SendToChat(t *testing.T) {
	tests := []struct {
		name        string
		chatRef     string
		wantChatID  int64
		wantChannel string
	}{
		{name: "numeric chat id", chatRef: "-1001234567890", wantChatID: -1001234567890},
		{name: "channel username", chatRef: "@files_log", wantChannel: "@files_log"},
		{name: "username without at sign", chatRef: "files_log", wantChannel: "@files_log"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			client := telegram.NewClient(api, time.Second, zerolog.Nop())

			require.NoError(t, client.SendToChat(context.Background(), tt.chatRef, "New registration: Petrov Ivan (ID: 1)"))

			msg := api.lastMessage(t)
			assert.Equal(t, tt.wantChatID, msg.ChatID)
			assert.Equal(t, tt.wantChannel, msg.ChannelUsername)
			assert.Equal(t, "New registration: Petrov Ivan (ID: 1)", msg.Text)
		})
	}
}

func TestClient_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/doc-1" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("essay body"))
	}))
	defer srv.Close()

	api := &fakeAPI{fileURL: srv.URL}
	client := telegram.NewClient(api, 5*time.Second, zerolog.Nop())
	dir := t.TempDir()

	dest := filepath.Join(dir, "ok.txt")
	require.NoError(t, client.Download(context.Background(), "doc-1", dest))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "essay body", string(data))

	missing := filepath.Join(dir, "missing.txt")
	require.Error(t, client.Download(context.Background(), "doc-2", missing))
	_, err = os.Stat(missing)
	assert.True(t, os.IsNotExist(err), "failed download leaves no file")
}

func TestClient_DownloadUnresolvableFile(t *testing.T) {
	client := telegram.NewClient(&fakeAPI{}, time.Second, zerolog.Nop())
	err := client.Download(context.Background(), "doc", filepath.Join(t.TempDir(), "x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve telegram file url")
}

func TestClient_DownloadErrorHidesToken(t *testing.T) {
	api := &fakeAPI{fileURL: "http://127.0.0.1:1/file/bot123456:topsecret"}
	client := telegram.NewClient(api, time.Second, zerolog.Nop())

	err := client.Download(context.Background(), "doc", filepath.Join(t.TempDir(), "x"))
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "topsecret")
}
