package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-lookup/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/domain/types"
	"github.com/secmon-lab/grc-lookup/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// sharedLoadTimeout bounds a fetch that no longer belongs to one caller
const sharedLoadTimeout = 2 * time.Minute

// RequirementCache keeps the last successful fetch per jurisdiction and
// serves it while fresh. When a refresh fails the previous entry is returned
// regardless of age.
type RequirementCache struct {
	registry *model.JurisdictionRegistry
	source   interfaces.RequirementSource
	repo     interfaces.RequirementRepository
	timeout  time.Duration
	now      func() time.Time
	group    singleflight.Group
}

// CacheOption configures RequirementCache
type CacheOption func(*RequirementCache)

// WithCacheTimeout overrides model.DefaultCacheTimeout
func WithCacheTimeout(d time.Duration) CacheOption {
	return func(c *RequirementCache) {
		c.timeout = d
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) CacheOption {
	return func(c *RequirementCache) {
		c.now = now
	}
}

// NewRequirementCache creates a cache in front of source
func NewRequirementCache(registry *model.JurisdictionRegistry, source interfaces.RequirementSource, repo interfaces.RequirementRepository, opts ...CacheOption) *RequirementCache {
	c := &RequirementCache{
		registry: registry,
		source:   source,
		repo:     repo,
		timeout:  model.DefaultCacheTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timeout returns the freshness window
func (c *RequirementCache) Timeout() time.Duration {
	return c.timeout
}

// Get returns the requirements of a jurisdiction. A fresh entry is returned
// without fetching unless forceRefresh is set. Concurrent misses for the same
// jurisdiction share one fetch.
func (c *RequirementCache) Get(ctx context.Context, id types.JurisdictionID, forceRefresh bool) ([]model.Requirement, error) {
	if !forceRefresh {
		if entry, ok := c.repo.Get(id); ok && entry.IsFresh(c.now(), c.timeout) {
			logging.From(ctx).Debug("Serving cached requirements", "jurisdiction", id, "count", len(entry.Data))
			return entry.Data, nil
		}
	}

	// The shared fetch outlives any single waiter; each waiter stops on its
	// own context.
	ch := c.group.DoChan(id.String(), func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()
		return c.load(loadCtx, id)
	})

	select {
	case <-ctx.Done():
		return nil, goerr.Wrap(ctx.Err(), "gave up waiting for requirements", goerr.V(model.JurisdictionKey, id))
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			logging.From(ctx).Debug("Shared in-flight fetch", "jurisdiction", id)
		}
		return res.Val.([]model.Requirement), nil
	}
}

func (c *RequirementCache) load(ctx context.Context, id types.JurisdictionID) ([]model.Requirement, error) {
	logger := logging.From(ctx).With("jurisdiction", id)

	rows, err := c.source.Fetch(ctx, id)
	if err != nil {
		if entry, ok := c.repo.Get(id); ok {
			logger.Warn("Failed to refresh requirements, using stale cache",
				"error", err.Error(),
				"age", c.now().Sub(entry.FetchedAt).String(),
				"count", len(entry.Data))
			return entry.Data, nil
		}
		return nil, goerr.Wrap(err, "failed to load requirements", goerr.V(model.JurisdictionKey, id))
	}

	now := c.now()
	reqs, dropped := model.NormalizeRows(id, rows, now)
	if dropped > 0 {
		logger.Warn("Dropped rows without control ID or title", "dropped", dropped, "kept", len(reqs))
	}

	c.repo.Put(&model.CacheEntry{
		Jurisdiction: id,
		Data:         reqs,
		FetchedAt:    now,
	})
	logger.Info("Cached requirements", "count", len(reqs))

	return reqs, nil
}

// Clear evicts the given jurisdictions, or every entry when none is given
func (c *RequirementCache) Clear(ids ...types.JurisdictionID) {
	if len(ids) == 0 {
		c.repo.DeleteAll()
		return
	}
	for _, id := range ids {
		c.repo.Delete(id)
	}
}

// Status reports the cached entries without modifying them
func (c *RequirementCache) Status() *model.CacheStatus {
	now := c.now()
	entries := c.repo.List()

	status := &model.CacheStatus{
		Size:    len(entries),
		Entries: make([]model.CacheEntryStatus, 0, len(entries)),
	}
	for _, entry := range entries {
		status.Entries = append(status.Entries, model.CacheEntryStatus{
			Jurisdiction: entry.Jurisdiction,
			ItemCount:    len(entry.Data),
			AgeSeconds:   int64(now.Sub(entry.FetchedAt).Seconds()),
			IsStale:      !entry.IsFresh(now, c.timeout),
			FetchedAt:    entry.FetchedAt,
		})
	}
	return status
}

// PrefetchAll loads every configured jurisdiction concurrently. A failing
// jurisdiction yields an empty list and does not affect the others.
func (c *RequirementCache) PrefetchAll(ctx context.Context) map[types.JurisdictionID][]model.Requirement {
	ids := c.registry.IDs()
	result := make(map[types.JurisdictionID][]model.Requirement, len(ids))
	var mu sync.Mutex

	var eg errgroup.Group
	for _, id := range ids {
		eg.Go(func() error {
			reqs, err := c.Get(ctx, id, false)
			if err != nil {
				logging.From(ctx).Warn("Prefetch failed", "jurisdiction", id, "error", err.Error())
				reqs = []model.Requirement{}
			}

			mu.Lock()
			defer mu.Unlock()
			result[id] = reqs
			return nil
		})
	}
	_ = eg.Wait()

	return result
}
