//go:build !integration

package sched_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"qwintry-bot/internal/infra/sched"
)

type countingSweeper struct{ calls int32 }

func (c *countingSweeper) Sweep(ctx context.Context) (int, error) {
	atomic.AddInt32(&c.calls, 1)
	return 1, nil
}

func TestSessionSweeperRunsUntilCancelled(t *testing.T) {
	log := zerolog.Nop()
	store := &countingSweeper{}
	w := sched.NewSessionSweeper(5*time.Millisecond, store, &log)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	err := w.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run returned %v", err)
	}
	if atomic.LoadInt32(&store.calls) == 0 {
		t.Fatal("sweeper never ran")
	}
}
