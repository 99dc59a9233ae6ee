package telegram

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/getsentry/sentry-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func EscapeMessage(message string) string {
	r := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return r.Replace(message)
}

// NotifyOps sends a message to the ops channel. Best effort, never blocks callers on failure.
func NotifyOps(message string) {
	token := os.Getenv("TG_TOKEN")
	chatIDRaw := os.Getenv("TG_OPS_CHAT_ID")
	if token == "" || chatIDRaw == "" {
		fmt.Printf("[Telegram] Skipping ops alert, TG_TOKEN or TG_OPS_CHAT_ID not set: %s\n", message)
		return
	}
	chatID, err := strconv.ParseInt(chatIDRaw, 10, 64)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Telegram] Invalid TG_OPS_CHAT_ID %q: %v", chatIDRaw, err))
		return
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Telegram] Error on bot init: %v", err))
		return
	}
	msg := tgbotapi.NewMessage(chatID, EscapeMessage(message))
	msg.ParseMode = "markdown"
	if _, err := bot.Send(msg); err != nil {
		sentry.CaptureException(fmt.Errorf("[Telegram] Error on sending ops alert: %v", err))
	}
}
