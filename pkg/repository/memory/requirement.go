package memory

import (
	"slices"
	"sync"

	"github.com/secmon-lab/grc-lookup/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/domain/types"
)

type requirementRepository struct {
	mu      sync.RWMutex
	entries map[types.JurisdictionID]*model.CacheEntry
}

var _ interfaces.RequirementRepository = &requirementRepository{}

func newRequirementRepository() *requirementRepository {
	return &requirementRepository{
		entries: make(map[types.JurisdictionID]*model.CacheEntry),
	}
}

// copyEntry creates a deep copy so callers never share slices with the store
func copyEntry(entry *model.CacheEntry) *model.CacheEntry {
	data := make([]model.Requirement, len(entry.Data))
	for i, req := range entry.Data {
		req.ApplicableTo = append([]string{}, req.ApplicableTo...)
		data[i] = req
	}

	return &model.CacheEntry{
		Jurisdiction: entry.Jurisdiction,
		Data:         data,
		FetchedAt:    entry.FetchedAt,
	}
}

func (r *requirementRepository) Get(id types.JurisdictionID) (*model.CacheEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[id]
	if !exists {
		return nil, false
	}
	return copyEntry(entry), true
}

func (r *requirementRepository) Put(entry *model.CacheEntry) {
	stored := copyEntry(entry)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[stored.Jurisdiction] = stored
}

func (r *requirementRepository) Delete(id types.JurisdictionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

func (r *requirementRepository) DeleteAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[types.JurisdictionID]*model.CacheEntry)
}

func (r *requirementRepository) List() []*model.CacheEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*model.CacheEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, copyEntry(entry))
	}
	slices.SortFunc(entries, func(a, b *model.CacheEntry) int {
		switch {
		case a.Jurisdiction < b.Jurisdiction:
			return -1
		case a.Jurisdiction > b.Jurisdiction:
			return 1
		default:
			return 0
		}
	})
	return entries
}
