package repository

import (
	"context"

	"qwintry-bot/internal/domain/model"
)

// StateRepository stores the calculator state per chat.
// GetState returns domain.ErrSessionNotFound when the chat has no state.
type StateRepository interface {
	SetState(ctx context.Context, chatID int64, state *model.ConversationState) error
	GetState(ctx context.Context, chatID int64) (*model.ConversationState, error)
	ClearState(ctx context.Context, chatID int64) error
}
