package worker

import (
	"context"
	"sync"
	"time"

	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/utils/logging"
)

// Prefetcher warms the requirement cache of every jurisdiction
type Prefetcher interface {
	Prefetch(ctx context.Context) model.PrefetchResult
}

// PrefetchWorker periodically reloads all jurisdictions so requests are
// served from a warm cache.
//
// Architecture assumptions:
// - Single server instance; the cache is process-local
type PrefetchWorker struct {
	prefetcher Prefetcher
	interval   time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}
	stopOnce   sync.Once

	mu      sync.RWMutex
	lastRun time.Time
	last    model.PrefetchResult
}

// NewPrefetchWorker creates a new worker refreshing every interval
func NewPrefetchWorker(prefetcher Prefetcher, interval time.Duration) *PrefetchWorker {
	return &PrefetchWorker{
		prefetcher: prefetcher,
		interval:   interval,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start begins the background refresh loop. The initial prefetch runs in the
// background and does not block server startup.
func (w *PrefetchWorker) Start(ctx context.Context) error {
	logging.From(ctx).Info("Prefetch worker starting", "interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *PrefetchWorker) Stop() {
	w.stopOnce.Do(func() {
		logging.Default().Info("Prefetch worker stopping")
		close(w.stopCh)
	})
	<-w.doneCh
	logging.Default().Info("Prefetch worker stopped")
}

// LastResult returns the time and counts of the most recent run
func (w *PrefetchWorker) LastResult() (time.Time, model.PrefetchResult) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastRun, w.last
}

func (w *PrefetchWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.refresh(ctx)

		case <-w.stopCh:
			logging.From(ctx).Info("Prefetch worker received stop signal")
			return

		case <-ctx.Done():
			logging.From(ctx).Info("Prefetch worker context cancelled")
			return
		}
	}
}

// refresh performs a single prefetch cycle. Failures are isolated per
// jurisdiction by the prefetcher.
func (w *PrefetchWorker) refresh(ctx context.Context) {
	startTime := time.Now()

	result := w.prefetcher.Prefetch(ctx)

	w.mu.Lock()
	w.lastRun = startTime
	w.last = result
	w.mu.Unlock()

	total := 0
	for _, n := range result {
		total += n
	}
	logging.From(ctx).Info("Prefetch completed",
		"jurisdictions", len(result),
		"requirements", total,
		"duration", time.Since(startTime).String())
}
