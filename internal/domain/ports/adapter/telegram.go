package adapter

import "context"

type Button struct {
	Text string
	Data string
	URL  string
}

// ReplyMarkup is either an inline keyboard attached to the message or a
// persistent reply keyboard (IsInline false, Data and URL ignored).
type ReplyMarkup struct {
	Buttons  [][]Button
	IsInline bool
}

type SendMessageParams struct {
	ChatID      int64
	Text        string
	ReplyMarkup *ReplyMarkup
}

// TelegramBotAdapter is the outbound messaging port. Delivery failures are
// logged by implementations; the returned error is informational.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, params SendMessageParams) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

type WebhookStatus struct {
	URL                string
	PendingUpdateCount int
	LastErrorMessage   string
	LastErrorDate      int
}

// WebhookManager registers the bot's webhook with the platform.
type WebhookManager interface {
	SetWebhook(ctx context.Context, url, secret string) error
	DeleteWebhook(ctx context.Context, dropPending bool) error
	WebhookInfo(ctx context.Context) (WebhookStatus, error)
}
