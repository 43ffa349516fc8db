package memory

import (
	"context"
	"sync"

	"qwintry-bot/internal/domain/model"
	"qwintry-bot/internal/domain/ports/repository"
)

var _ repository.HistoryRepository = (*HistoryStore)(nil)

type HistoryStore struct {
	mu    sync.Mutex
	turns map[int64][]model.Turn
	limit int
}

func NewHistoryStore(limit int) *HistoryStore {
	return &HistoryStore{turns: make(map[int64][]model.Turn), limit: limit}
}

func (h *HistoryStore) GetHistory(ctx context.Context, chatID int64) ([]model.Turn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]model.Turn, len(h.turns[chatID]))
	copy(out, h.turns[chatID])
	return out, nil
}

func (h *HistoryStore) SaveHistory(ctx context.Context, chatID int64, turns []model.Turn) error {
	trimmed := model.TrimTurns(turns, h.limit)
	cp := make([]model.Turn, len(trimmed))
	copy(cp, trimmed)
	h.mu.Lock()
	h.turns[chatID] = cp
	h.mu.Unlock()
	return nil
}

func (h *HistoryStore) ClearHistory(ctx context.Context, chatID int64) error {
	h.mu.Lock()
	delete(h.turns, chatID)
	h.mu.Unlock()
	return nil
}
