package adapter

import (
	"context"

	"qwintry-bot/internal/domain/model"
)

// AIServiceAdapter is the port for the hosted chat deployment.
type AIServiceAdapter interface {
	// Chat sends the turns (oldest first, the question last) and returns the
	// extracted reply text. A blank reply is reported as domain.ErrEmptyReply.
	Chat(ctx context.Context, conversationID string, turns []model.Turn) (string, error)
}
