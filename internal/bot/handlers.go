package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Houeta/gold-flow/internal/repository"
	"gopkg.in/telebot.v4"
)

const (
	msgGreeting     = "Halo! Saya memantau harga emas Antam.\n/subscribe - terima notifikasi perubahan harga\n/unsubscribe - berhenti berlangganan\n/price - harga terakhir"
	msgSubscribed   = "Berhasil berlangganan. Anda akan menerima notifikasi saat harga berubah."
	msgUnsubscribed = "Langganan dihentikan."
	msgNoPrices     = "Belum ada data harga. Coba lagi nanti."
	msgFailure      = "Terjadi kesalahan, coba lagi nanti."
)

// startHandler process command /start.
func (b *Bot) startHandler(ctx telebot.Context) error {
	b.log.Info("User started the bot", "username", ctx.Sender().Username)

	if err := ctx.Send(msgGreeting); err != nil {
		return fmt.Errorf("failed to send greeting message: %w", err)
	}

	return nil
}

// subscribeHandler process command /subscribe.
func (b *Bot) subscribeHandler(ctx telebot.Context) error {
	opCtx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	chatID := ctx.Chat().ID
	if err := b.subs.SubscribeChat(opCtx, chatID); err != nil {
		b.log.Error("failed to subscribe chat", "chat_id", chatID, "error", err)
		return b.reply(ctx, msgFailure)
	}

	b.log.Info("Chat subscribed", "chat_id", chatID)

	return b.reply(ctx, msgSubscribed)
}

// unsubscribeHandler process command /unsubscribe.
func (b *Bot) unsubscribeHandler(ctx telebot.Context) error {
	opCtx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	chatID := ctx.Chat().ID
	if err := b.subs.UnsubscribeChat(opCtx, chatID); err != nil {
		b.log.Error("failed to unsubscribe chat", "chat_id", chatID, "error", err)
		return b.reply(ctx, msgFailure)
	}

	b.log.Info("Chat unsubscribed", "chat_id", chatID)

	return b.reply(ctx, msgUnsubscribed)
}

// priceHandler process command /price and replies with the stored baseline.
func (b *Bot) priceHandler(ctx telebot.Context) error {
	opCtx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	state, err := b.states.GetState(opCtx)
	switch {
	case errors.Is(err, repository.ErrStateNotFound):
		return b.reply(ctx, msgNoPrices)
	case err != nil:
		b.log.Error("failed to load prices", "error", err)
		return b.reply(ctx, msgFailure)
	}

	snap := state.Snapshot
	lines := []string{"Harga emas dari " + snap.SourceID}
	if snap.UpdateTimeLabel != "" {
		lines = append(lines, "Update: "+snap.UpdateTimeLabel)
	}
	for _, rec := range snap.Records {
		lines = append(lines, fmt.Sprintf("%s: %s", rec.Label, rec.FormattedSellPrice))
	}
	if snap.Buyback != nil {
		lines = append(lines, fmt.Sprintf("Buyback: %s", snap.Buyback.FormattedSellPrice))
	}

	return b.reply(ctx, strings.Join(lines, "\n"))
}

func (b *Bot) reply(ctx telebot.Context, text string) error {
	if err := ctx.Send(text); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}

	return nil
}
