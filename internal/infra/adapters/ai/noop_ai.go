package ai

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"qwintry-bot/internal/domain/model"
	"qwintry-bot/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAIAdapter)(nil)

// NoopAIAdapter answers locally for --dev runs without Abacus credentials.
type NoopAIAdapter struct {
	log *zerolog.Logger
}

func NewNoopAIAdapter(logger *zerolog.Logger) *NoopAIAdapter {
	return &NoopAIAdapter{log: logger}
}

func (a *NoopAIAdapter) Chat(ctx context.Context, conversationID string, turns []model.Turn) (string, error) {
	// Simulate slight processing time and respect ctx
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	var question string
	if n := len(turns); n > 0 {
		question = turns[n-1].Text
	}
	a.log.Info().Str("conversation", conversationID).Int("turns", len(turns)).Str("question", question).Msg("[noop-ai] chat")
	return "Это тестовый ответ (dev mode).", nil
}
