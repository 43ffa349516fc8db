package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"qwintry-bot/internal/domain/ports/adapter"
)

var (
	_ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)
	_ adapter.WebhookManager     = (*NoopBotAdapter)(nil)
)

// NoopBotAdapter logs outbound calls instead of sending them. Used by --dev
// when no bot token is configured.
type NoopBotAdapter struct {
	log *zerolog.Logger
}

func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	l := logger.With().Str("component", "noop-telegram").Logger()
	return &NoopBotAdapter{log: &l}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, p adapter.SendMessageParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ev := b.log.Info().Int64("chat_id", p.ChatID).Str("text", p.Text)
	if p.ReplyMarkup != nil {
		ev = ev.Interface("buttons", p.ReplyMarkup.Buttons).Bool("inline", p.ReplyMarkup.IsInline)
	}
	ev.Msg("sendMessage")
	return nil
}

func (b *NoopBotAdapter) AnswerCallback(ctx context.Context, callbackID, text string) error {
	b.log.Debug().Str("callback_id", callbackID).Str("text", text).Msg("answerCallbackQuery")
	return nil
}

func (b *NoopBotAdapter) SetWebhook(ctx context.Context, url, secret string) error {
	b.log.Info().Str("url", url).Bool("secret", secret != "").Msg("setWebhook")
	return nil
}

func (b *NoopBotAdapter) DeleteWebhook(ctx context.Context, dropPending bool) error {
	b.log.Info().Bool("drop_pending", dropPending).Msg("deleteWebhook")
	return nil
}

func (b *NoopBotAdapter) WebhookInfo(ctx context.Context) (adapter.WebhookStatus, error) {
	return adapter.WebhookStatus{}, nil
}
