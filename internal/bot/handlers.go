package bot

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"avito_bot/internal/model"
)

const defaultRecentLimit = 5

// handleStart registers the sender as a subscriber. Registration is
// idempotent, so /restart after a lost chat history is harmless.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	sub := &model.Subscriber{
		ID:        msg.From.ID,
		Username:  msg.From.UserName,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
		ChatID:    msg.Chat.ID,
	}
	if err := b.store.CreateSubscriber(ctx, sub); err != nil {
		b.log.Error("register subscriber", "user_id", sub.ID, "error", err)
		b.SendMessage(msg.Chat.ID, "Something went wrong, please try again later.")
		return
	}

	name := msg.From.FirstName
	if name == "" {
		name = msg.From.UserName
	}
	b.SendMessage(msg.Chat.ID, fmt.Sprintf(
		"Hello, <b>%s</b> 👋!\nYou will now receive a message for every new listing. Use /help for more.",
		html.EscapeString(name)))
}

func (b *Bot) handleHelp(chatID int64) {
	b.SendMessage(chatID, `/start — subscribe to new listing notifications
/restart — same as /start
/recent [n] — show the last n stored listings (default 5)
/help — this message`)
}

// handleRecent replies with the most recently stored ads.
func (b *Bot) handleRecent(ctx context.Context, chatID int64, args string) {
	limit := defaultRecentLimit
	if args != "" {
		n, err := strconv.Atoi(strings.Fields(args)[0])
		if err != nil || n < 1 || n > 20 {
			b.SendMessage(chatID, "Usage: /recent [1-20]")
			return
		}
		limit = n
	}

	ads, err := b.store.ListRecentAds(ctx, limit)
	if err != nil {
		b.log.Error("list recent ads", "error", err)
		b.SendMessage(chatID, "Something went wrong, please try again later.")
		return
	}
	if len(ads) == 0 {
		b.SendMessage(chatID, "No listings stored yet.")
		return
	}

	for i := range ads {
		b.SendMessage(chatID, FormatAdNotification(&ads[i], b.origin))
	}
}
