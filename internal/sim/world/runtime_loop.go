package world

import (
	"context"
	"time"
)

// Run drives the tick loop until ctx is cancelled or Stop is called.
// All world state is owned by this goroutine.
func (w *World) Run(ctx context.Context) {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.shutdown()
			return
		case <-w.stop:
			return
		case <-ticker.C:
			w.StepOnce()
		}
	}
}

// Stop terminates the loop. Idempotent.
func (w *World) Stop() {
	w.shutdown()
}

func (w *World) shutdown() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// Tick returns the last completed tick. Safe from any goroutine.
func (w *World) Tick() uint64 { return w.tick.Load() }
