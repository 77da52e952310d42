package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"filesend-bot/internal/domain/conversation"
)

// Dispatcher accepts events for asynchronous handling.
type Dispatcher interface {
	Submit(ctx context.Context, ev conversation.Event) error
}

// ToEvent converts an update into an engine event. Updates without a sender,
// such as channel posts, are dropped.
func ToEvent(u tgbotapi.Update) (conversation.Event, bool) {
	if cq := u.CallbackQuery; cq != nil {
		if cq.From == nil {
			return conversation.Event{}, false
		}
		chatID := cq.From.ID
		if cq.Message != nil && cq.Message.Chat != nil {
			chatID = cq.Message.Chat.ID
		}
		return conversation.Event{
			UserID:       cq.From.ID,
			ChatID:       chatID,
			Kind:         conversation.EventCallback,
			CallbackData: cq.Data,
		}, true
	}

	m := u.Message
	if m == nil || m.From == nil || m.Chat == nil {
		return conversation.Event{}, false
	}
	ev := conversation.Event{
		UserID: m.From.ID,
		ChatID: m.Chat.ID,
		Text:   m.Text,
	}
	switch {
	case m.IsCommand():
		ev.Kind = conversation.EventCommand
		ev.Command = m.Command()
	case m.Document != nil:
		ev.Kind = conversation.EventDocument
		ev.Document = &conversation.Document{
			FileID:   m.Document.FileID,
			FileName: m.Document.FileName,
		}
	case m.Text != "":
		ev.Kind = conversation.EventText
	default:
		ev.Kind = conversation.EventOther
	}
	return ev, true
}

// Poller long-polls the Bot API and hands updates to a Dispatcher.
type Poller struct {
	api        API
	client     *Client
	dispatcher Dispatcher
	timeout    int
	log        zerolog.Logger
}

// NewPoller builds a Poller. timeout is the long poll timeout in seconds.
func NewPoller(api API, client *Client, dispatcher Dispatcher, timeout int, log zerolog.Logger) *Poller {
	return &Poller{
		api:        api,
		client:     client,
		dispatcher: dispatcher,
		timeout:    timeout,
		log:        log.With().Str("component", "telegram-poller").Logger(),
	}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = p.timeout
	updates := p.api.GetUpdatesChan(cfg)
	p.log.Info().Int("timeout_seconds", p.timeout).Msg("polling for updates")

	for {
		select {
		case <-ctx.Done():
			p.api.StopReceivingUpdates()
			p.log.Info().Msg("polling stopped")
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			p.handle(ctx, u)
		}
	}
}

func (p *Poller) handle(ctx context.Context, u tgbotapi.Update) {
	if u.CallbackQuery != nil {
		p.client.AnswerCallback(ctx, u.CallbackQuery.ID)
	}

	ev, ok := ToEvent(u)
	if !ok {
		p.log.Debug().Int("update_id", u.UpdateID).Msg("ignoring update")
		return
	}
	if err := p.dispatcher.Submit(ctx, ev); err != nil {
		p.log.Warn().Err(err).
			Int("update_id", u.UpdateID).
			Int64("telegram_id", ev.UserID).
			Msg("update dropped")
	}
}
