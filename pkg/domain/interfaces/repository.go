package interfaces

import (
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/domain/types"
)

// RequirementRepository stores the latest cache entry per jurisdiction
type RequirementRepository interface {
	// Get returns the entry for a jurisdiction, or false if none exists
	Get(id types.JurisdictionID) (*model.CacheEntry, bool)

	// Put replaces the entry for entry.Jurisdiction
	Put(entry *model.CacheEntry)

	// Delete removes the entry for a jurisdiction, if any
	Delete(id types.JurisdictionID)

	// DeleteAll removes every entry
	DeleteAll()

	// List returns all entries ordered by jurisdiction ID
	List() []*model.CacheEntry
}
