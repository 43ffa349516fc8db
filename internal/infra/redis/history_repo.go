package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"qwintry-bot/internal/domain/model"
	"qwintry-bot/internal/domain/ports/repository"
)

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

// HistoryRepo stores the AI turn history of a chat as one JSON value.
type HistoryRepo struct {
	client RedisClient
	limit  int
	ttl    time.Duration
}

func NewHistoryRepo(client RedisClient, limit int, ttl time.Duration) *HistoryRepo {
	return &HistoryRepo{client: client, limit: limit, ttl: ttl}
}

func historyKey(chatID int64) string {
	return fmt.Sprintf("ai_history:%d", chatID)
}

func (h *HistoryRepo) GetHistory(ctx context.Context, chatID int64) ([]model.Turn, error) {
	data, err := h.client.Get(ctx, historyKey(chatID))
	if err != nil {
		if IsNil(err) {
			return []model.Turn{}, nil
		}
		return nil, err
	}
	var turns []model.Turn
	if err := json.Unmarshal([]byte(data), &turns); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return turns, nil
}

func (h *HistoryRepo) SaveHistory(ctx context.Context, chatID int64, turns []model.Turn) error {
	data, err := json.Marshal(model.TrimTurns(turns, h.limit))
	if err != nil {
		return err
	}
	return h.client.Set(ctx, historyKey(chatID), data, h.ttl)
}

func (h *HistoryRepo) ClearHistory(ctx context.Context, chatID int64) error {
	return h.client.Del(ctx, historyKey(chatID))
}
