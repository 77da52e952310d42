// Package sanitize masks credentials before text reaches logs or errors.
package sanitize

import (
	"errors"
	"regexp"
)

const redacted = "[REDACTED]"

// Bot API URLs embed the token as /bot<id>:<secret>/ and /file/bot<id>:<secret>/.
var botTokenPattern = regexp.MustCompile(`bot\d+:[A-Za-z0-9_-]+`)

// BotToken replaces every Telegram bot token in s.
func BotToken(s string) string {
	return botTokenPattern.ReplaceAllString(s, "bot"+redacted)
}

// Error returns err with bot tokens masked in its message. The original
// error is returned unchanged when it carries no token.
func Error(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	clean := BotToken(msg)
	if clean == msg {
		return err
	}
	return errors.New(clean)
}
