package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/domain/types"
	"github.com/secmon-lab/grc-lookup/pkg/repository/memory"
	"github.com/secmon-lab/grc-lookup/pkg/usecase"
)

func newCache(t *testing.T, src *fakeSource, clock *fakeClock) *usecase.RequirementCache {
	t.Helper()
	return usecase.NewRequirementCache(newRegistry(t), src, memory.New().Requirement(),
		usecase.WithClock(clock.Now))
}

func TestRequirementCacheGet(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh entry is served without fetching", func(t *testing.T) {
		src := newFakeSource()
		src.set("california", californiaRows, nil)
		clock := newFakeClock()
		cache := newCache(t, src, clock)

		first, err := cache.Get(ctx, "california", false)
		gt.NoError(t, err).Required()
		gt.Array(t, first).Length(4)

		clock.Advance(4 * time.Minute)
		second, err := cache.Get(ctx, "california", false)
		gt.NoError(t, err).Required()
		gt.Value(t, second).Equal(first)
		gt.Number(t, src.count("california")).Equal(1)
	})

	t.Run("expired entry is refetched", func(t *testing.T) {
		src := newFakeSource()
		src.set("california", californiaRows, nil)
		clock := newFakeClock()
		cache := newCache(t, src, clock)

		_, err := cache.Get(ctx, "california", false)
		gt.NoError(t, err).Required()

		clock.Advance(5 * time.Minute)
		_, err = cache.Get(ctx, "california", false)
		gt.NoError(t, err).Required()
		gt.Number(t, src.count("california")).Equal(2)
	})

	t.Run("force refresh fetches even when fresh", func(t *testing.T) {
		src := newFakeSource()
		src.set("california", californiaRows, nil)
		cache := newCache(t, src, newFakeClock())

		_, err := cache.Get(ctx, "california", false)
		gt.NoError(t, err).Required()
		src.set("california", californiaRows[:1], nil)

		got, err := cache.Get(ctx, "california", true)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(1)
		gt.Number(t, src.count("california")).Equal(2)
	})

	t.Run("failed refresh falls back to stale entry", func(t *testing.T) {
		src := newFakeSource()
		src.set("california", californiaRows, nil)
		clock := newFakeClock()
		cache := newCache(t, src, clock)

		first, err := cache.Get(ctx, "california", false)
		gt.NoError(t, err).Required()

		src.set("california", nil, goerr.Wrap(model.ErrFetch, "network down"))
		clock.Advance(time.Hour)

		got, err := cache.Get(ctx, "california", true)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal(first)

		status := cache.Status()
		gt.Array(t, status.Entries).Length(1).Required()
		gt.Bool(t, status.Entries[0].IsStale).True()
	})

	t.Run("failure without entry propagates", func(t *testing.T) {
		src := newFakeSource()
		src.set("indonesia", nil, goerr.Wrap(model.ErrFetch, "network down"))
		cache := newCache(t, src, newFakeClock())

		_, err := cache.Get(ctx, "indonesia", false)
		gt.Error(t, err).Is(model.ErrFetch)
		gt.Number(t, cache.Status().Size).Equal(0)
	})

	t.Run("rows without control ID or title are dropped", func(t *testing.T) {
		src := newFakeSource()
		src.set("california", []model.RawRow{
			row("A-1", "Kept", "CCPA", "Data Privacy", "High"),
			row("A-2", "", "CCPA", "Data Privacy", "High"),
			row("A-3", "Also kept", "", "", ""),
		}, nil)
		cache := newCache(t, src, newFakeClock())

		got, err := cache.Get(ctx, "california", false)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(2).Required()
		gt.Value(t, got[1].Framework).Equal(model.DefaultFramework)
		gt.Value(t, got[1].Domain).Equal(model.DefaultDomain)
		gt.Value(t, got[1].RiskLevel).Equal(types.RiskLevelMedium)
		gt.Value(t, got[1].LastUpdated).Equal("2026-03-14")
	})

	t.Run("concurrent misses share one fetch", func(t *testing.T) {
		src := newFakeSource()
		src.set("california", californiaRows, nil)
		src.entered = make(chan struct{}, 1)
		src.release = make(chan struct{})
		cache := newCache(t, src, newFakeClock())

		const callers = 8
		var wg sync.WaitGroup
		results := make([][]model.Requirement, callers)
		errs := make([]error, callers)
		for i := range callers {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = cache.Get(ctx, "california", false)
			}(i)
		}

		<-src.entered
		time.Sleep(50 * time.Millisecond)
		close(src.release)
		wg.Wait()

		gt.Number(t, src.count("california")).Equal(1)
		for i := range callers {
			gt.NoError(t, errs[i])
			gt.Array(t, results[i]).Length(4)
		}
	})

	t.Run("cancelled caller does not fail other waiters", func(t *testing.T) {
		src := newFakeSource()
		src.set("california", californiaRows, nil)
		src.entered = make(chan struct{}, 1)
		src.release = make(chan struct{})
		cache := newCache(t, src, newFakeClock())

		firstCtx, cancel := context.WithCancel(ctx)
		firstErr := make(chan error, 1)
		go func() {
			_, err := cache.Get(firstCtx, "california", false)
			firstErr <- err
		}()
		<-src.entered

		type result struct {
			reqs []model.Requirement
			err  error
		}
		second := make(chan result, 1)
		go func() {
			reqs, err := cache.Get(ctx, "california", false)
			second <- result{reqs: reqs, err: err}
		}()
		time.Sleep(50 * time.Millisecond)

		cancel()
		gt.Error(t, <-firstErr).Is(context.Canceled)

		close(src.release)
		got := <-second
		gt.NoError(t, got.err).Required()
		gt.Array(t, got.reqs).Length(4)
		gt.Number(t, src.count("california")).Equal(1)
		gt.Number(t, cache.Status().Size).Equal(1)
	})
}

func TestRequirementCacheClearAndStatus(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.set("california", californiaRows, nil)
	src.set("indonesia", []model.RawRow{row("UUPDP-001", "Consent", "UU PDP", "Data Privacy", "High")}, nil)
	clock := newFakeClock()
	cache := newCache(t, src, clock)

	_, err := cache.Get(ctx, "indonesia", false)
	gt.NoError(t, err).Required()
	clock.Advance(90 * time.Second)
	_, err = cache.Get(ctx, "california", false)
	gt.NoError(t, err).Required()

	status := cache.Status()
	gt.Number(t, status.Size).Equal(2)
	gt.Array(t, status.Entries).Length(2).Required()
	gt.Value(t, status.Entries[0].Jurisdiction).Equal(types.JurisdictionID("california"))
	gt.Number(t, status.Entries[0].ItemCount).Equal(4)
	gt.Number(t, status.Entries[0].AgeSeconds).Equal(int64(0))
	gt.Number(t, status.Entries[1].AgeSeconds).Equal(int64(90))
	gt.Bool(t, status.Entries[1].IsStale).False()

	// Status is read-only
	gt.Value(t, cache.Status()).Equal(status)

	cache.Clear("california")
	gt.Number(t, cache.Status().Size).Equal(1)

	cache.Clear()
	gt.Number(t, cache.Status().Size).Equal(0)

	_, err = cache.Get(ctx, "california", false)
	gt.NoError(t, err).Required()
	gt.Number(t, src.count("california")).Equal(2)
}

func TestPrefetchAll(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.set("california", californiaRows, nil)
	src.set("indonesia", nil, errors.New("bucket unavailable"))
	cache := newCache(t, src, newFakeClock())

	result := cache.PrefetchAll(ctx)
	gt.Number(t, len(result)).Equal(2)
	gt.Array(t, result["california"]).Length(4)
	gt.Array(t, result["indonesia"]).Length(0)
	gt.Value(t, result["indonesia"]).NotNil()

	// Successful jurisdictions are cached
	_, err := cache.Get(ctx, "california", false)
	gt.NoError(t, err).Required()
	gt.Number(t, src.count("california")).Equal(1)
}
