//go:build !integration

package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"qwintry-bot/internal/domain"
	"qwintry-bot/internal/domain/model"
)

func TestStateRepo(t *testing.T) {
	ctx := context.Background()
	cli := newFakeClient()
	repo := NewStateRepo(cli, 30*time.Minute)

	if _, err := repo.GetState(ctx, 42); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	st := model.NewConversationState(42, time.Now())
	st.Step = model.StepAwaitingCity
	st.Warehouse = &model.Warehouse{Index: 1, Code: "US", Hub: "US1"}
	st.Country = &model.Country{ID: "RU", Name: "Россия"}
	if err := repo.SetState(ctx, 42, st); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if cli.ttl["conv_state:42"] != 30*time.Minute {
		t.Errorf("ttl = %v", cli.ttl["conv_state:42"])
	}

	got, err := repo.GetState(ctx, 42)
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if got.Step != model.StepAwaitingCity || got.Warehouse.Hub != "US1" || got.Country.ID != "RU" {
		t.Fatalf("unexpected state: %+v", got)
	}

	if err := repo.ClearState(ctx, 42); err != nil {
		t.Fatalf("ClearState: %v", err)
	}
	if _, err := repo.GetState(ctx, 42); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after clear, got %v", err)
	}
}

func TestHistoryRepoTrimsToLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepo(newFakeClient(), 3, 0)

	empty, err := repo.GetHistory(ctx, 7)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty history, got %v %v", empty, err)
	}

	turns := []model.Turn{
		{IsUser: true, Text: "a"}, {IsUser: false, Text: "b"},
		{IsUser: true, Text: "c"}, {IsUser: false, Text: "d"},
	}
	if err := repo.SaveHistory(ctx, 7, turns); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	got, _ := repo.GetHistory(ctx, 7)
	if len(got) != 3 || got[0].Text != "b" || got[2].Text != "d" {
		t.Fatalf("unexpected history: %+v", got)
	}

	_ = repo.ClearHistory(ctx, 7)
	got, _ = repo.GetHistory(ctx, 7)
	if len(got) != 0 {
		t.Fatalf("expected cleared history, got %+v", got)
	}
}

func TestRateLimiter(t *testing.T) {
	ctx := context.Background()
	cli := newFakeClient()
	rl := NewRateLimiter(cli)
	key := ChatKey(5)

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, key, 3, time.Minute)
		if err != nil || !ok {
			t.Fatalf("call %d: allowed=%v err=%v", i, ok, err)
		}
	}
	ok, _ := rl.Allow(ctx, key, 3, time.Minute)
	if ok {
		t.Fatal("fourth call should be limited")
	}
	if cli.ttl[key] != time.Minute {
		t.Errorf("window not set: %v", cli.ttl[key])
	}
}

func TestStateRepoDropsUndecodableState(t *testing.T) {
	ctx := context.Background()
	cli := newFakeClient()
	repo := NewStateRepo(cli, 0)

	_ = cli.Set(ctx, "conv_state:42", "{not json", 0)
	if _, err := repo.GetState(ctx, 42); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, ok := cli.data["conv_state:42"]; ok {
		t.Fatal("undecodable key must be deleted")
	}
}
