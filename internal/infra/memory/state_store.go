package memory

import (
	"context"
	"sync"
	"time"

	"qwintry-bot/internal/domain"
	"qwintry-bot/internal/domain/model"
	"qwintry-bot/internal/domain/ports/repository"
)

var _ repository.StateRepository = (*StateStore)(nil)

// StateStore is the process-local session map. Entries are copied on the way
// in and out so callers never share a record.
type StateStore struct {
	mu     sync.Mutex
	states map[int64]model.ConversationState
	ttl    time.Duration
	now    func() time.Time
}

// NewStateStore builds an empty store. ttl <= 0 disables expiry.
func NewStateStore(ttl time.Duration) *StateStore {
	return &StateStore{
		states: make(map[int64]model.ConversationState),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *StateStore) SetState(ctx context.Context, chatID int64, state *model.ConversationState) error {
	if state == nil {
		return s.ClearState(ctx, chatID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneState(state)
	cp.ChatID = chatID
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = s.now()
	}
	s.states[chatID] = cp
	return nil
}

func (s *StateStore) GetState(ctx context.Context, chatID int64) (*model.ConversationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[chatID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if st.Expired(s.now(), s.ttl) {
		delete(s.states, chatID)
		return nil, domain.ErrSessionNotFound
	}
	cp := cloneState(&st)
	return &cp, nil
}

func (s *StateStore) ClearState(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	delete(s.states, chatID)
	s.mu.Unlock()
	return nil
}

// Sweep removes expired entries and returns how many were dropped.
func (s *StateStore) Sweep(ctx context.Context) (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, st := range s.states {
		if st.Expired(now, s.ttl) {
			delete(s.states, id)
			n++
		}
	}
	return n, nil
}

// Len is the number of stored sessions, expired ones included.
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

func cloneState(in *model.ConversationState) model.ConversationState {
	out := *in
	if in.Warehouse != nil {
		w := *in.Warehouse
		out.Warehouse = &w
	}
	if in.Country != nil {
		c := *in.Country
		out.Country = &c
	}
	if in.City != nil {
		c := *in.City
		out.City = &c
	}
	return out
}
