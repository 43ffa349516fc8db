//go:build !integration

package ai_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"qwintry-bot/internal/domain"
	"qwintry-bot/internal/domain/model"
	ai "qwintry-bot/internal/infra/adapters/ai"
)

type stubAI struct {
	reply string
	err   error
	calls int
}

func (s *stubAI) Chat(ctx context.Context, conversationID string, turns []model.Turn) (string, error) {
	s.calls++
	return s.reply, s.err
}

func nopLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func TestFallback_FirstSuccessWins(t *testing.T) {
	t.Parallel()
	first := &stubAI{err: domain.ErrUpstream}
	second := &stubAI{reply: "from second"}
	third := &stubAI{reply: "from third"}

	m := ai.NewFallbackAIAdapter([]ai.Node{
		{Name: "a", Adapter: first},
		{Name: "b", Adapter: second},
		{Name: "c", Adapter: third},
	}, nopLogger())

	got, err := m.Chat(context.Background(), "1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from second" {
		t.Fatalf("got %q", got)
	}
	if first.calls != 1 || second.calls != 1 || third.calls != 0 {
		t.Fatalf("calls = %d/%d/%d", first.calls, second.calls, third.calls)
	}
}

func TestFallback_ErrorKinds(t *testing.T) {
	t.Parallel()
	t.Run("all empty", func(t *testing.T) {
		m := ai.NewFallbackAIAdapter([]ai.Node{
			{Name: "a", Adapter: &stubAI{err: domain.ErrEmptyReply}},
			{Name: "b", Adapter: &stubAI{err: domain.ErrEmptyReply}},
		}, nopLogger())
		_, err := m.Chat(context.Background(), "1", nil)
		if !errors.Is(err, domain.ErrEmptyReply) {
			t.Fatalf("want ErrEmptyReply, got %v", err)
		}
	})
	t.Run("mixed", func(t *testing.T) {
		m := ai.NewFallbackAIAdapter([]ai.Node{
			{Name: "a", Adapter: &stubAI{err: domain.ErrEmptyReply}},
			{Name: "b", Adapter: &stubAI{err: errors.New("boom")}},
		}, nopLogger())
		_, err := m.Chat(context.Background(), "1", nil)
		if !errors.Is(err, domain.ErrUpstream) {
			t.Fatalf("want ErrUpstream, got %v", err)
		}
	})
	t.Run("no nodes", func(t *testing.T) {
		m := ai.NewFallbackAIAdapter(nil, nopLogger())
		if _, err := m.Chat(context.Background(), "1", nil); !errors.Is(err, domain.ErrUpstream) {
			t.Fatalf("want ErrUpstream, got %v", err)
		}
	})
}

func TestLimitedAI_PassThrough(t *testing.T) {
	t.Parallel()
	inner := &stubAI{reply: "ok"}
	l := ai.NewLimitedAI(inner, 1)
	for i := 0; i < 3; i++ {
		if got, err := l.Chat(context.Background(), "1", nil); err != nil || got != "ok" {
			t.Fatalf("got %q, %v", got, err)
		}
	}
	if inner.calls != 3 {
		t.Fatalf("calls = %d", inner.calls)
	}
}

func TestLimitedAI_ContextCancelledWhileWaiting(t *testing.T) {
	t.Parallel()
	block := make(chan struct{})
	inner := &blockingAI{release: block, entered: make(chan struct{}, 1)}
	l := ai.NewLimitedAI(inner, 1)

	done := make(chan struct{})
	go func() {
		_, _ = l.Chat(context.Background(), "1", nil)
		close(done)
	}()
	<-inner.entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Chat(ctx, "2", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	close(block)
	<-done
}

type blockingAI struct {
	release chan struct{}
	entered chan struct{}
}

func (b *blockingAI) Chat(ctx context.Context, conversationID string, turns []model.Turn) (string, error) {
	b.entered <- struct{}{}
	<-b.release
	return "ok", nil
}
