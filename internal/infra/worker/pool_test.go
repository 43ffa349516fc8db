//go:build !integration

package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"qwintry-bot/internal/infra/worker"
)

func TestPoolRunsTasks(t *testing.T) {
	log := zerolog.Nop()
	p := worker.NewPool(2, &log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ran := 0
	for i := 0; i < 5; i++ {
		wg.Add(1)
		err := p.Submit(func(ctx context.Context) error {
			defer wg.Done()
			mu.Lock()
			ran++
			n := ran
			mu.Unlock()
			if n == 3 {
				panic("survivable")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	wg.Wait()
	p.Stop()
	if ran != 5 {
		t.Fatalf("ran = %d", ran)
	}
}

func TestPoolQueueFull(t *testing.T) {
	log := zerolog.Nop()
	p := worker.NewPool(1, &log) // queue of 4, not started
	for i := 0; i < 4; i++ {
		if err := p.Submit(func(context.Context) error { return nil }); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if err := p.Submit(func(context.Context) error { return nil }); !errors.Is(err, worker.ErrQueueFull) {
		t.Fatalf("want ErrQueueFull, got %v", err)
	}
	if err := p.Submit(nil); err == nil {
		t.Fatal("nil task must be rejected")
	}
}

func TestPoolStopDrainsQueue(t *testing.T) {
	log := zerolog.Nop()
	p := worker.NewPool(1, &log)

	var mu sync.Mutex
	ran := 0
	for i := 0; i < 4; i++ {
		if err := p.Submit(func(context.Context) error {
			mu.Lock()
			ran++
			mu.Unlock()
			return nil
		}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	// the context is already cancelled; queued tasks must still run
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Start(ctx)
	p.Stop()

	mu.Lock()
	got := ran
	mu.Unlock()
	if got != 4 {
		t.Fatalf("ran = %d, want 4", got)
	}
	if err := p.Submit(func(context.Context) error { return nil }); !errors.Is(err, worker.ErrStopped) {
		t.Fatalf("submit after stop: %v", err)
	}
	p.Stop()
}
