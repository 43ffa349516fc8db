package repository

import (
	"context"

	"qwintry-bot/internal/domain/model"
)

// HistoryRepository keeps the bounded AI turn history per chat.
// GetHistory returns an empty slice for unknown chats.
type HistoryRepository interface {
	GetHistory(ctx context.Context, chatID int64) ([]model.Turn, error)
	SaveHistory(ctx context.Context, chatID int64, turns []model.Turn) error
	ClearHistory(ctx context.Context, chatID int64) error
}
