package telegram

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"qwintry-bot/internal/config"
	"qwintry-bot/internal/domain/ports/adapter"
	"qwintry-bot/internal/infra/metrics"
)

var (
	_ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)
	_ adapter.WebhookManager     = (*RealTelegramBotAdapter)(nil)
)

// RealTelegramBotAdapter sends through the Bot API. Updates arrive by webhook,
// so it never polls.
type RealTelegramBotAdapter struct {
	bot           *tgbotapi.BotAPI
	defaultMarkup *adapter.ReplyMarkup
	log           *zerolog.Logger
}

// NewRealTelegramBotAdapter builds the client without calling getMe, so a
// cold start never blocks on Telegram. defaultMarkup is attached to every
// message sent without an explicit keyboard.
func NewRealTelegramBotAdapter(cfg *config.BotConfig, defaultMarkup *adapter.ReplyMarkup, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if cfg.Token == "" {
		return nil, errors.New("bot token is empty")
	}
	bot := &tgbotapi.BotAPI{
		Token:  cfg.Token,
		Client: &http.Client{Timeout: 30 * time.Second},
		Buffer: 100,
	}
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot.SetAPIEndpoint(endpoint)

	l := logger.With().Str("component", "telegram").Logger()
	return &RealTelegramBotAdapter{bot: bot, defaultMarkup: defaultMarkup, log: &l}, nil
}

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, p adapter.SendMessageParams) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg := tgbotapi.NewMessage(p.ChatID, p.Text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	markup := p.ReplyMarkup
	if markup == nil {
		markup = r.defaultMarkup
	}
	if markup != nil {
		msg.ReplyMarkup = toTelegramMarkup(markup)
	}

	_, err := r.bot.Send(msg)
	if err != nil && isEntityParseError(err) {
		// free text from the AI can contain unbalanced markup
		msg.ParseMode = ""
		_, err = r.bot.Send(msg)
	}
	metrics.IncTelegramAPI("sendMessage", err == nil)
	if err != nil {
		r.log.Error().Err(err).Int64("chat_id", p.ChatID).Msg("sendMessage failed")
	}
	return err
}

func (r *RealTelegramBotAdapter) AnswerCallback(ctx context.Context, callbackID, text string) error {
	_, err := r.bot.Request(tgbotapi.NewCallback(callbackID, text))
	metrics.IncTelegramAPI("answerCallbackQuery", err == nil)
	if err != nil {
		r.log.Warn().Err(err).Str("callback_id", callbackID).Msg("answerCallbackQuery failed")
	}
	return err
}

func (r *RealTelegramBotAdapter) SetWebhook(ctx context.Context, url, secret string) error {
	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", secret)
	_, err := r.bot.MakeRequest("setWebhook", params)
	metrics.IncTelegramAPI("setWebhook", err == nil)
	return err
}

func (r *RealTelegramBotAdapter) DeleteWebhook(ctx context.Context, dropPending bool) error {
	_, err := r.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: dropPending})
	metrics.IncTelegramAPI("deleteWebhook", err == nil)
	return err
}

func (r *RealTelegramBotAdapter) WebhookInfo(ctx context.Context) (adapter.WebhookStatus, error) {
	info, err := r.bot.GetWebhookInfo()
	metrics.IncTelegramAPI("getWebhookInfo", err == nil)
	if err != nil {
		return adapter.WebhookStatus{}, err
	}
	return adapter.WebhookStatus{
		URL:                info.URL,
		PendingUpdateCount: info.PendingUpdateCount,
		LastErrorMessage:   info.LastErrorMessage,
		LastErrorDate:      info.LastErrorDate,
	}, nil
}

func isEntityParseError(err error) bool {
	return strings.Contains(err.Error(), "can't parse entities")
}

// toTelegramMarkup converts a port keyboard.
// - If btn.URL is set, the inline button opens a link
// - Else if btn.Data is set, the inline button sends callback data
// - Else the label doubles as callback data
func toTelegramMarkup(m *adapter.ReplyMarkup) interface{} {
	if !m.IsInline {
		rows := make([][]tgbotapi.KeyboardButton, 0, len(m.Buttons))
		for _, row := range m.Buttons {
			if len(row) == 0 {
				continue
			}
			r := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, btn := range row {
				r = append(r, tgbotapi.NewKeyboardButton(btn.Text))
			}
			rows = append(rows, r)
		}
		kb := tgbotapi.NewReplyKeyboard(rows...)
		kb.ResizeKeyboard = true
		return kb
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(m.Buttons))
	for _, row := range m.Buttons {
		if len(row) == 0 {
			continue
		}
		r := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		rows = append(rows, r)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
