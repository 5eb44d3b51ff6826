package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/service/worker"
)

type mockPrefetcher struct {
	mu     sync.Mutex
	called int
}

func (m *mockPrefetcher) Prefetch(ctx context.Context) model.PrefetchResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called++
	return model.PrefetchResult{"california": 3, "indonesia": 0}
}

func (m *mockPrefetcher) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.called
}

func TestPrefetchWorker(t *testing.T) {
	t.Run("runs initial prefetch and then on every tick", func(t *testing.T) {
		prefetcher := &mockPrefetcher{}
		w := worker.NewPrefetchWorker(prefetcher, 20*time.Millisecond)

		gt.NoError(t, w.Start(context.Background()))
		time.Sleep(70 * time.Millisecond)
		w.Stop()

		gt.Number(t, prefetcher.calls()).GreaterOrEqual(2)

		at, result := w.LastResult()
		gt.Bool(t, at.IsZero()).False()
		gt.Value(t, result).Equal(model.PrefetchResult{"california": 3, "indonesia": 0})
	})

	t.Run("stops on context cancel", func(t *testing.T) {
		prefetcher := &mockPrefetcher{}
		w := worker.NewPrefetchWorker(prefetcher, time.Hour)

		ctx, cancel := context.WithCancel(context.Background())
		gt.NoError(t, w.Start(ctx))
		time.Sleep(20 * time.Millisecond)
		cancel()

		done := make(chan struct{})
		go func() {
			w.Stop()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("worker did not stop")
		}
		gt.Number(t, prefetcher.calls()).Equal(1)
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		w := worker.NewPrefetchWorker(&mockPrefetcher{}, time.Hour)
		gt.NoError(t, w.Start(context.Background()))
		w.Stop()
		w.Stop()
	})
}
