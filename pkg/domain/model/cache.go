package model

import (
	"time"

	"github.com/secmon-lab/grc-lookup/pkg/domain/types"
)

// DefaultCacheTimeout is the freshness window of a cache entry
const DefaultCacheTimeout = 5 * time.Minute

// CacheEntry is the last successful result for one jurisdiction. It is
// replaced wholesale, never mutated.
type CacheEntry struct {
	Jurisdiction types.JurisdictionID
	Data         []Requirement
	FetchedAt    time.Time
}

// IsFresh reports whether the entry is younger than timeout at now
func (e *CacheEntry) IsFresh(now time.Time, timeout time.Duration) bool {
	return now.Sub(e.FetchedAt) < timeout
}

// CacheStatus is a diagnostic snapshot of the requirement cache
type CacheStatus struct {
	Size    int                `json:"size"`
	Entries []CacheEntryStatus `json:"entries"`
}

// CacheEntryStatus describes one cache entry
type CacheEntryStatus struct {
	Jurisdiction types.JurisdictionID `json:"jurisdiction"`
	ItemCount    int                  `json:"itemCount"`
	AgeSeconds   int64                `json:"ageSeconds"`
	IsStale      bool                 `json:"isStale"`
	FetchedAt    time.Time            `json:"fetchedAt"`
}
