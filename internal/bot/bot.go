// Package bot implements the Telegram surface: subscriber registration
// commands and notification delivery.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"avito_bot/internal/storage"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot handles subscriber commands and sends ad notifications.
type Bot struct {
	api    telegramAPI
	store  storage.Storage
	origin string
	log    *slog.Logger
}

// New creates a Bot with the given Telegram token.
func New(token string, store storage.Storage, origin string, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		api:    api,
		store:  store,
		origin: origin,
		log:    log,
	}, nil
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
// It only ever registers subscribers, so it is safe to run alongside the
// ingestion loop.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			b.handleCommand(ctx, update.Message)
		}
	}
}

// SendMessage delivers an HTML-formatted message to the given chat.
// Failures are logged, not propagated: one unreachable subscriber must not
// abort a fanout.
func (b *Bot) SendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())

	b.log.Debug("command", "cmd", cmd, "chat_id", msg.Chat.ID)

	switch cmd {
	case "start", "restart":
		b.handleStart(ctx, msg)
	case "help":
		b.handleHelp(msg.Chat.ID)
	case "recent":
		b.handleRecent(ctx, msg.Chat.ID, args)
	default:
		b.SendMessage(msg.Chat.ID, "Unknown command. Use /help for a list of commands.")
	}
}
