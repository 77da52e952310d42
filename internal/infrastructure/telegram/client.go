// Package telegram adapts the Telegram Bot API to the conversation engine.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"filesend-bot/internal/config"
	"filesend-bot/internal/domain/conversation"
	"filesend-bot/internal/infrastructure/observability"
	"filesend-bot/internal/utils/platformerrors"
	"filesend-bot/internal/utils/sanitize"
)

// API is the subset of *tgbotapi.BotAPI the adapter uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Client sends replies, relays log lines and downloads attachments.
type Client struct {
	api      API
	download *resty.Client
	log      zerolog.Logger
}

// NewBotAPI authenticates against the Bot API and routes the library's own
// log output through log.
func NewBotAPI(cfg *config.Config, log zerolog.Logger) (*tgbotapi.BotAPI, error) {
	if err := tgbotapi.SetLogger(botLogger{log: log.With().Str("component", "telegram-bot-api").Logger()}); err != nil {
		return nil, err
	}

	var (
		bot *tgbotapi.BotAPI
		err error
	)
	if cfg.TelegramAPIEndpoint != "" {
		bot, err = tgbotapi.NewBotAPIWithAPIEndpoint(cfg.BotToken, cfg.TelegramAPIEndpoint)
	} else {
		bot, err = tgbotapi.NewBotAPI(cfg.BotToken)
	}
	if err != nil {
		return nil, platformerrors.NewError(context.Background(), platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "connect to telegram bot api", err)
	}
	bot.Debug = cfg.TelegramDebug
	log.Info().Str("bot", bot.Self.UserName).Msg("authorized on telegram")
	return bot, nil
}

// botLogger adapts zerolog to tgbotapi.BotLogger.
type botLogger struct {
	log zerolog.Logger
}

func (l botLogger) Println(v ...interface{}) {
	l.log.Warn().Msg(sanitize.BotToken(strings.TrimSuffix(fmt.Sprintln(v...), "\n")))
}

func (l botLogger) Printf(format string, v ...interface{}) {
	l.log.Warn().Msg(sanitize.BotToken(fmt.Sprintf(format, v...)))
}

// NewClient wraps api. downloadTimeout bounds each attachment download.
func NewClient(api API, downloadTimeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		api:      api,
		download: resty.New().SetTimeout(downloadTimeout),
		log:      log.With().Str("component", "telegram-client").Logger(),
	}
}

// Send delivers a reply with its inline keyboard.
func (c *Client) Send(ctx context.Context, chatID int64, reply conversation.Reply) error {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if len(reply.Keyboard) > 0 {
		msg.ReplyMarkup = inlineKeyboard(reply.Keyboard)
	}
	return c.send(ctx, msg)
}

// SendToChat posts text to a log destination. Numeric references are chat
// ids, anything else is a channel username.
func (c *Client) SendToChat(ctx context.Context, chatRef string, text string) error {
	chatRef = strings.TrimSpace(chatRef)
	if id, err := strconv.ParseInt(chatRef, 10, 64); err == nil {
		return c.send(ctx, tgbotapi.NewMessage(id, text))
	}
	if !strings.HasPrefix(chatRef, "@") {
		chatRef = "@" + chatRef
	}
	return c.send(ctx, tgbotapi.NewMessageToChannel(chatRef, text))
}

func (c *Client) send(ctx context.Context, msg tgbotapi.MessageConfig) error {
	if _, err := c.api.Send(msg); err != nil {
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "send telegram message", sanitize.Error(err),
			map[string]any{"chat_id": msg.ChatID, "channel": msg.ChannelUsername})
	}
	return nil
}

// AnswerCallback acknowledges a button press so the client stops its spinner.
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) {
	if _, err := c.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		c.log.Warn().Err(sanitize.Error(err)).
			Str("request_id", platformerrors.RequestIDFromContext(ctx)).
			Msg("failed to answer callback query")
	}
}

// Download writes the attachment identified by fileID to destPath.
func (c *Client) Download(ctx context.Context, fileID, destPath string) error {
	ctx, span := observability.StartSpan(ctx, "telegram.download", attribute.String("file_id", fileID))
	defer span.End()

	url, err := c.api.GetFileDirectURL(fileID)
	if err != nil {
		err = sanitize.Error(err)
		observability.RecordError(ctx, err)
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "resolve telegram file url", err)
	}

	resp, err := c.download.R().
		SetContext(ctx).
		SetOutput(destPath).
		Get(url)
	if err != nil {
		err = sanitize.Error(err)
		observability.RecordError(ctx, err)
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "download telegram file", err)
	}
	if resp.StatusCode() != http.StatusOK {
		_ = os.Remove(destPath)
		err := fmt.Errorf("unexpected status %d", resp.StatusCode())
		observability.RecordError(ctx, err)
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "download telegram file", err)
	}

	c.log.Debug().
		Str("file_id", fileID).
		Int64("bytes", resp.Size()).
		Dur("elapsed", resp.Time()).
		Msg("attachment downloaded")
	return nil
}

func inlineKeyboard(rows [][]conversation.Button) tgbotapi.InlineKeyboardMarkup {
	markup := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		markup = append(markup, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(markup...)
}
