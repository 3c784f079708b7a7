package service

import (
	"context"
	"sync"
	"time"

	"roomhub/internal/logger"
)

// Tasks runs best-effort background work with a bounded timeout. Results are
// discarded after being logged; Wait lets shutdown drain what is in flight.
type Tasks struct {
	wg  sync.WaitGroup
	log *logger.Logger
}

func NewTasks(log *logger.Logger) *Tasks {
	if log == nil {
		log = logger.Nop()
	}
	return &Tasks{log: log}
}

// Go runs fn in its own goroutine. The task context keeps ctx values but not its
// cancellation, so a finished HTTP request does not abort an outbound call.
func (t *Tasks) Go(ctx context.Context, name string, timeout time.Duration, fn func(ctx context.Context) error, kv ...any) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		start := time.Now()
		if err := fn(tctx); err != nil {
			t.log.Warnw(name+"_failed", append(kv, "error", err, "elapsed", time.Since(start))...)
			return
		}
		t.log.Debugw(name+"_done", append(kv, "elapsed", time.Since(start))...)
	}()
}

// Wait blocks until all tasks finish or ctx is done.
func (t *Tasks) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
