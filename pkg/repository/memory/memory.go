package memory

import (
	"github.com/secmon-lab/grc-lookup/pkg/domain/interfaces"
)

// Memory is the in-process store backing the requirement cache
type Memory struct {
	requirement *requirementRepository
}

func New() *Memory {
	return &Memory{
		requirement: newRequirementRepository(),
	}
}

// Requirement returns the per-jurisdiction cache entry store
func (m *Memory) Requirement() interfaces.RequirementRepository {
	return m.requirement
}
