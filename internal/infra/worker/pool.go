// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"qwintry-bot/internal/infra/metrics"
)

var (
	// ErrQueueFull is returned by Submit when every slot is taken.
	ErrQueueFull = errors.New("worker queue full")
	ErrStopped   = errors.New("worker pool stopped")
)

// Task is one unit of background work, usually a single webhook update.
type Task func(ctx context.Context) error

// Pool runs submitted tasks on a fixed number of goroutines with a bounded queue.
type Pool struct {
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	jobs   chan Task
	once   sync.Once
	n      int
	log    *zerolog.Logger
}

func NewPool(workers int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	l := logger.With().Str("component", "worker").Logger()
	return &Pool{jobs: make(chan Task, workers*4), n: workers, log: &l}
}

// Start launches the workers. ctx is handed to every task; cancelling it does
// not stop the workers, only Stop does.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for task := range p.jobs {
				p.run(ctx, id, task)
			}
		}(i)
	}
}

func (p *Pool) run(ctx context.Context, id int, task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			metrics.IncUpdateJob("panic")
			p.log.Error().Int("worker", id).Interface("panic", rec).Msg("task panicked")
		}
	}()
	if err := task(ctx); err != nil {
		metrics.IncUpdateJob("error")
		p.log.Warn().Err(err).Int("worker", id).Msg("task error")
		return
	}
	metrics.IncUpdateJob("ok")
}

// Stop refuses new tasks, lets the workers finish everything already queued
// and waits for them.
func (p *Pool) Stop() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.jobs)
		p.mu.Unlock()
	})
	p.wg.Wait()
}

// Submit never blocks; callers fall back to inline work on ErrQueueFull.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrStopped
	}
	select {
	case p.jobs <- task:
		return nil
	default:
		metrics.IncUpdateJob("rejected")
		return ErrQueueFull
	}
}
