package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"qwintry-bot/internal/domain"
	"qwintry-bot/internal/domain/model"
	"qwintry-bot/internal/domain/ports/repository"
)

var _ repository.StateRepository = (*StateRepo)(nil)

// StateRepo keeps calculator state in Redis so several instances can share it.
type StateRepo struct {
	client RedisClient
	ttl    time.Duration // 0 keeps keys until the flow ends
}

func NewStateRepo(client RedisClient, ttl time.Duration) *StateRepo {
	return &StateRepo{client: client, ttl: ttl}
}

func (s *StateRepo) stateKey(chatID int64) string {
	return fmt.Sprintf("conv_state:%d", chatID)
}

func (s *StateRepo) SetState(ctx context.Context, chatID int64, state *model.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.stateKey(chatID), data, s.ttl)
}

func (s *StateRepo) GetState(ctx context.Context, chatID int64) (*model.ConversationState, error) {
	data, err := s.client.Get(ctx, s.stateKey(chatID))
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var state model.ConversationState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		// an unreadable record would block the chat until it expires
		if err := s.client.Del(ctx, s.stateKey(chatID)); err != nil {
			return nil, fmt.Errorf("drop undecodable state: %w", err)
		}
		return nil, domain.ErrSessionNotFound
	}
	return &state, nil
}

func (s *StateRepo) ClearState(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, s.stateKey(chatID))
}
