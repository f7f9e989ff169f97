// Package bot exposes price updates through a Telegram bot.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Houeta/gold-flow/internal/notifier"
	"github.com/Houeta/gold-flow/internal/repository"
	"gopkg.in/telebot.v4"
)

// opTimeout bounds storage calls made from handlers.
const opTimeout = 10 * time.Second

// Bot contains the bot API instance and its storage.
type Bot struct {
	bot    API
	log    *slog.Logger
	subs   repository.SubscriptionRepository
	states repository.StateRepository
}

// NewBot authorizes against Telegram and registers the command routes.
func NewBot(
	log *slog.Logger,
	token string,
	poller time.Duration,
	subs repository.SubscriptionRepository,
	states repository.StateRepository,
) (*Bot, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: poller},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Authorized on account", "account", bot.Me.Username)

	botInstance := &Bot{bot: bot, log: log, subs: subs, states: states}

	botInstance.registerRoutes()

	return botInstance, nil
}

// Start launches the bot to listen for updates.
func (b *Bot) Start() {
	b.log.Info("Telegram bot is starting...")
	b.bot.Start()
}

// Stop gracefully stops the Telegram bot and logs the action.
func (b *Bot) Stop() {
	b.log.Info("Telegram bot is stopped...")
	b.bot.Stop()
}

// registerRoutes configures all routes (commands).
func (b *Bot) registerRoutes() {
	b.bot.Handle("/start", b.startHandler)
	b.bot.Handle("/subscribe", b.subscribeHandler)
	b.bot.Handle("/unsubscribe", b.unsubscribeHandler)
	b.bot.Handle("/price", b.priceHandler)
}

// Notify sends the payload summary to every subscribed chat.
// A failed chat does not stop delivery to the others.
func (b *Bot) Notify(ctx context.Context, payload *notifier.Payload) error {
	const opn = "bot.Notify"
	log := b.log.With("op", opn)

	chats, err := b.subs.GetSubscribedChats(ctx)
	if err != nil {
		return fmt.Errorf("%s: failed to get subscribers: %w", opn, err)
	}

	var errs []error
	for _, id := range chats {
		if _, err = b.bot.Send(telebot.ChatID(id), payload.Summary); err != nil {
			log.WarnContext(ctx, "failed to deliver update", "chat_id", id, "error", err)
			errs = append(errs, fmt.Errorf("chat %d: %w", id, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", opn, errors.Join(errs...))
	}

	log.InfoContext(ctx, "Update delivered to subscribers", "chats", len(chats))

	return nil
}
